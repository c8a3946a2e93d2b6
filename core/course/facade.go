package course

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursepath/core"
)

// FacadeDeps holds the collaborators of a Facade.
type FacadeDeps struct {
	// Gateway is the live backend; nil means no gateway is configured.
	Gateway Backend
	// Prober checks the gateway before it is used. Defaults to Gateway when it implements Prober.
	Prober Prober
	// Demo serves the mock catalog when the gateway is unreachable.
	Demo         Backend
	ProbeTimeout time.Duration

	Validate   *validator.Validate
	Translator ut.Translator
	Logger     core.Logger
}

// Facade is the single entry point UI collaborators use for course and enrollment data.
// It owns the session Cache and the ModeSelector.
type Facade struct {
	cache       *Cache
	selector    *ModeSelector
	courses     *Service
	enrollments *EnrollmentService
}

func NewFacade(deps FacadeDeps) *Facade {
	prober := deps.Prober
	if prober == nil {
		prober, _ = deps.Gateway.(Prober)
	}
	validate, translator := deps.Validate, deps.Translator
	if validate == nil {
		validate, translator = core.NewValidator()
	}
	InitValidators(validate, translator)

	cache := NewCache()
	selector := NewModeSelector(prober, deps.Gateway, deps.Demo, deps.ProbeTimeout, deps.Logger)
	// data fetched in one mode must not leak into the other
	selector.OnChange(func(from, to Mode) {
		if from != ModeUnprobed {
			cache.Reset()
		}
	})

	courses := NewService(selector, cache, validate, translator, deps.Logger)
	return &Facade{
		cache:       cache,
		selector:    selector,
		courses:     courses,
		enrollments: NewEnrollmentService(selector, cache, courses, deps.Logger),
	}
}

// Mode

func (f *Facade) Mode() Mode { return f.selector.Mode() }

// Probe determines the mode once; it is implied by the first data operation.
func (f *Facade) Probe(ctx context.Context) Mode { return f.selector.Probe(ctx) }

// RetryProbe re-checks the gateway. Switching mode drops every cached entity.
func (f *Facade) RetryProbe(ctx context.Context) Mode { return f.selector.RetryProbe(ctx) }

func (f *Facade) OnModeChange(fn func(from, to Mode)) { f.selector.OnChange(fn) }

// Cache readers

func (f *Facade) Courses() []Course { return f.cache.Courses() }

func (f *Facade) Enrollments() []Enrollment { return f.cache.Enrollments() }

func (f *Facade) StudentsByCourse(courseID string) []string {
	return f.enrollments.StudentsByCourse(courseID)
}

// Courses

func (f *Facade) ListCourses(ctx context.Context) ([]Course, error) {
	return f.courses.ListCourses(ctx)
}

func (f *Facade) GetCourse(ctx context.Context, id string) (Course, error) {
	return f.courses.GetCourse(ctx, id)
}

func (f *Facade) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	return f.courses.CreateCourse(ctx, nc)
}

func (f *Facade) UpdateCourse(ctx context.Context, crs Course) (Course, error) {
	return f.courses.UpdateCourse(ctx, crs)
}

func (f *Facade) DeleteCourse(ctx context.Context, id string) (bool, error) {
	return f.courses.DeleteCourse(ctx, id)
}

// Enrollments

func (f *Facade) Enroll(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	return f.enrollments.Enroll(ctx, courseID, studentID)
}

func (f *Facade) UpdateProgress(
	ctx context.Context,
	courseID, studentID, moduleID string,
	completed bool,
) (Enrollment, error) {
	return f.enrollments.UpdateProgress(ctx, courseID, studentID, moduleID, completed)
}

func (f *Facade) GetEnrollment(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	return f.enrollments.GetEnrollment(ctx, courseID, studentID)
}

func (f *Facade) ListEnrollments(ctx context.Context, studentID string) ([]Enrollment, error) {
	return f.enrollments.ListEnrollments(ctx, studentID)
}

func (f *Facade) ListEnrolledCourses(ctx context.Context, studentID string) ([]Course, error) {
	return f.enrollments.ListEnrolledCourses(ctx, studentID)
}
