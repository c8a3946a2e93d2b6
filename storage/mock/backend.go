// Package mock serves the demo dataset used when the course gateway is unreachable.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepath/core"
	"github.com/trezcool/coursepath/core/course"
	"github.com/trezcool/coursepath/storage/localstore"
)

// local storage keys of the demo dataset
const (
	CoursesKey     = "lmsCourses"
	EnrollmentsKey = "lmsEnrollments"
)

const DefaultIDPrefix = "mock-"

// Backend implements course.Backend on top of a localstore.Store seeded with Catalog.
// Every operation loads the dataset, applies its change and saves it back.
type Backend struct {
	mutex    sync.Mutex
	store    localstore.Store
	idPrefix string
	nowFunc  func() time.Time
	newID    func() string
}

var _ course.Backend = (*Backend)(nil) // interface compliance check

type Option func(*Backend)

// WithIDPrefix sets the prefix of generated course and enrollment ids.
func WithIDPrefix(prefix string) Option {
	return func(b *Backend) { b.idPrefix = prefix }
}

// WithClock sets the clock used to date new enrollments.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.nowFunc = now }
}

func NewBackend(store localstore.Store, opts ...Option) *Backend {
	b := &Backend{
		store:    store,
		idPrefix: DefaultIDPrefix,
		nowFunc:  time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Mode() course.Mode { return course.ModeDemo }

type dataset struct {
	courses     []course.Course
	enrollments []course.Enrollment
}

func (d *dataset) course(id string) (int, bool) {
	for i, crs := range d.courses {
		if crs.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (d *dataset) enrollment(courseID, studentID string) (int, bool) {
	for i, e := range d.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID {
			return i, true
		}
	}
	return -1, false
}

// load reads the dataset, seeding the store with Catalog on first use.
func (b *Backend) load(ctx context.Context) (*dataset, error) {
	d := new(dataset)
	found, err := b.store.Load(ctx, CoursesKey, &d.courses)
	if err != nil {
		return nil, core.NewConnectivityError("loading demo courses", err)
	}
	if !found {
		d.courses = Catalog()
		if err = b.store.Save(ctx, CoursesKey, d.courses); err != nil {
			return nil, core.NewConnectivityError("seeding demo courses", err)
		}
	}
	if _, err = b.store.Load(ctx, EnrollmentsKey, &d.enrollments); err != nil {
		return nil, core.NewConnectivityError("loading demo enrollments", err)
	}
	return d, nil
}

func (b *Backend) saveCourses(ctx context.Context, d *dataset) error {
	if err := b.store.Save(ctx, CoursesKey, d.courses); err != nil {
		return core.NewConnectivityError("saving demo courses", err)
	}
	return nil
}

func (b *Backend) saveEnrollments(ctx context.Context, d *dataset) error {
	if err := b.store.Save(ctx, EnrollmentsKey, d.enrollments); err != nil {
		return core.NewConnectivityError("saving demo enrollments", err)
	}
	return nil
}

// Courses

func (b *Backend) ListCourses(ctx context.Context) ([]course.Course, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	return cloneCourses(d.courses), nil
}

func (b *Backend) GetCourse(ctx context.Context, id string) (course.Course, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return course.Course{}, err
	}
	i, ok := d.course(id)
	if !ok {
		return course.Course{}, core.NewNotFoundError("course", id)
	}
	return d.courses[i].Clone(), nil
}

func (b *Backend) CreateCourse(ctx context.Context, nc course.NewCourse) (course.Course, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return course.Course{}, err
	}

	crs := course.Course{
		ID:               b.idPrefix + b.newID(),
		Title:            nc.Title,
		Description:      nc.Description,
		Thumbnail:        nc.Thumbnail,
		Instructor:       nc.Instructor,
		Duration:         nc.Duration,
		Modules:          make([]course.Module, 0, len(nc.Modules)),
		EnrolledStudents: []string{},
	}
	for _, m := range nc.Modules {
		if m.ID == "" {
			m.ID = b.newID()
		}
		crs.Modules = append(crs.Modules, m)
	}

	d.courses = append(d.courses, crs)
	if err = b.saveCourses(ctx, d); err != nil {
		return course.Course{}, err
	}
	return crs.Clone(), nil
}

func (b *Backend) UpdateCourse(ctx context.Context, uc course.UpdateCourse) (course.Course, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return course.Course{}, err
	}
	i, ok := d.course(uc.ID)
	if !ok {
		return course.Course{}, core.NewNotFoundError("course", uc.ID)
	}

	d.courses[i] = uc.Apply(d.courses[i])
	if err = b.saveCourses(ctx, d); err != nil {
		return course.Course{}, err
	}
	return d.courses[i].Clone(), nil
}

// DeleteCourse removes the course if present. Its enrollments are kept.
func (b *Backend) DeleteCourse(ctx context.Context, id string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return err
	}
	i, ok := d.course(id)
	if !ok {
		return nil
	}
	d.courses = append(d.courses[:i], d.courses[i+1:]...)
	return b.saveCourses(ctx, d)
}

// Enrollments

func (b *Backend) Enroll(ctx context.Context, courseID, studentID string) (course.Enrollment, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return course.Enrollment{}, err
	}
	ci, ok := d.course(courseID)
	if !ok {
		return course.Enrollment{}, core.NewEnrollmentError(courseID, studentID, "course does not exist")
	}
	if e, found, err := b.findEnrollment(ctx, d, courseID, studentID); err != nil || found {
		return e, err
	}

	e := course.Enrollment{
		ID:               b.idPrefix + "enroll-" + b.newID(),
		CourseID:         courseID,
		StudentID:        studentID,
		EnrolledDate:     b.nowFunc().UTC(),
		CompletedModules: []string{},
	}
	// membership goes first: findEnrollment synthesizes the record of a stored member
	d.courses[ci].AddStudent(studentID)
	if err = b.saveCourses(ctx, d); err != nil {
		return course.Enrollment{}, err
	}

	d.enrollments = append(d.enrollments, e)
	if err = b.saveEnrollments(ctx, d); err != nil {
		d.courses[ci].RemoveStudent(studentID)
		if rerr := b.saveCourses(ctx, d); rerr != nil {
			return course.Enrollment{}, errors.Wrapf(err, "reverting enrollment: %v", rerr)
		}
		return course.Enrollment{}, err
	}
	return e.Clone(), nil
}

func (b *Backend) UpdateProgress(
	ctx context.Context,
	courseID, studentID, moduleID string,
	completed bool,
) (course.Enrollment, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return course.Enrollment{}, err
	}
	ci, ok := d.course(courseID)
	if !ok {
		return course.Enrollment{}, core.NewNotFoundError("course", courseID)
	}
	if _, found, err := b.findEnrollment(ctx, d, courseID, studentID); err != nil {
		return course.Enrollment{}, err
	} else if !found {
		return course.Enrollment{}, core.NewNotFoundError("enrollment", courseID+"/"+studentID)
	}

	ei, _ := d.enrollment(courseID, studentID)
	e := &d.enrollments[ei]
	e.ToggleModule(moduleID, completed)
	e.Recompute(d.courses[ci])

	if err = b.saveEnrollments(ctx, d); err != nil {
		return course.Enrollment{}, err
	}
	return e.Clone(), nil
}

func (b *Backend) GetEnrollment(ctx context.Context, courseID, studentID string) (course.Enrollment, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return course.Enrollment{}, err
	}
	e, found, err := b.findEnrollment(ctx, d, courseID, studentID)
	if err != nil {
		return course.Enrollment{}, err
	}
	if !found {
		return course.Enrollment{}, core.NewNotFoundError("enrollment", courseID+"/"+studentID)
	}
	return e, nil
}

// findEnrollment returns the stored enrollment of the pair. Students listed in a course
// without an enrollment record get one synthesized and saved.
func (b *Backend) findEnrollment(
	ctx context.Context,
	d *dataset,
	courseID, studentID string,
) (course.Enrollment, bool, error) {
	if i, ok := d.enrollment(courseID, studentID); ok {
		return d.enrollments[i].Clone(), true, nil
	}

	ci, ok := d.course(courseID)
	if !ok || !d.courses[ci].HasStudent(studentID) {
		return course.Enrollment{}, false, nil
	}
	e := course.Enrollment{
		ID:               b.idPrefix + "enrollment-" + courseID + "-" + studentID,
		CourseID:         courseID,
		StudentID:        studentID,
		EnrolledDate:     b.nowFunc().UTC(),
		CompletedModules: []string{},
	}
	d.enrollments = append(d.enrollments, e)
	if err := b.saveEnrollments(ctx, d); err != nil {
		return course.Enrollment{}, false, err
	}
	return e.Clone(), true, nil
}

// ListEnrollments returns the enrollments of every student.
func (b *Backend) ListEnrollments(ctx context.Context, _ string) ([]course.Enrollment, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	enrollments := make([]course.Enrollment, 0, len(d.enrollments))
	for _, e := range d.enrollments {
		enrollments = append(enrollments, e.Clone())
	}
	return enrollments, nil
}

func (b *Backend) ListEnrolledCourses(ctx context.Context, studentID string) ([]course.Course, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	d, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	courses := make([]course.Course, 0)
	for _, crs := range d.courses {
		if crs.HasStudent(studentID) {
			courses = append(courses, crs.Clone())
		}
	}
	return courses, nil
}

func cloneCourses(courses []course.Course) []course.Course {
	cp := make([]course.Course, 0, len(courses))
	for _, crs := range courses {
		cp = append(cp, crs.Clone())
	}
	return cp
}
