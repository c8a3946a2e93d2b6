package course

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/coursepath/core"
)

// EnrollmentService synchronizes enrollments between the selected Backend and the Cache.
type EnrollmentService struct {
	backends BackendSelector
	cache    *Cache
	courses  *Service
	logger   core.Logger

	lookups singleflight.Group
	enrolls singleflight.Group
}

func NewEnrollmentService(backends BackendSelector, cache *Cache, courses *Service, logger core.Logger) *EnrollmentService {
	return &EnrollmentService{
		backends: backends,
		cache:    cache,
		courses:  courses,
		logger:   logger,
	}
}

// Enroll enrolls studentID in courseID. Enrolling twice returns the existing enrollment.
// Concurrent calls for the same pair share one enrollment, which outlives the cancellation
// of any one caller.
func (svc *EnrollmentService) Enroll(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	courseID, studentID = core.CleanString(courseID), core.CleanString(studentID)
	if err := validateIDs(courseID, studentID); err != nil {
		return Enrollment{}, err
	}
	if e, ok := svc.cache.Enrollment(courseID, studentID); ok {
		return e, nil
	}

	ch := svc.enrolls.DoChan(pairKey(courseID, studentID), func() (interface{}, error) {
		return svc.enroll(context.WithoutCancel(ctx), courseID, studentID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Enrollment{}, res.Err
		}
		return res.Val.(Enrollment).Clone(), nil
	case <-ctx.Done():
		return Enrollment{}, errors.Wrap(ctx.Err(), "enrolling student")
	}
}

func (svc *EnrollmentService) enroll(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	gen := svc.cache.Generation()
	if e, ok := svc.cache.Enrollment(courseID, studentID); ok {
		return e, nil
	}

	if _, err := svc.courses.GetCourse(ctx, courseID); err != nil {
		if core.IsNotFound(err) {
			return Enrollment{}, core.NewEnrollmentError(courseID, studentID, "course does not exist")
		}
		return Enrollment{}, errors.Wrap(err, "enrolling student")
	}

	backend := svc.backends.Backend(ctx)

	// an enrollment may exist on the backend without being cached yet
	existing, err := backend.GetEnrollment(ctx, courseID, studentID)
	switch {
	case err == nil:
		e, _ := svc.cache.PutEnrollmentIfAbsent(gen, existing)
		svc.cache.AddStudent(gen, courseID, studentID)
		return e, nil
	case !core.IsNotFound(err):
		svc.logger.Error("failed to look up enrollment", err, enrollmentFields(courseID, studentID))
		return Enrollment{}, errors.Wrap(err, "enrolling student")
	}

	e, err := backend.Enroll(ctx, courseID, studentID)
	if err != nil {
		if core.IsNotFound(err) {
			return Enrollment{}, core.NewEnrollmentError(courseID, studentID, "course does not exist")
		}
		svc.logger.Error("failed to enroll student", err, enrollmentFields(courseID, studentID))
		return Enrollment{}, errors.Wrap(err, "enrolling student")
	}
	svc.cache.PutEnrollment(gen, e)
	svc.cache.AddStudent(gen, courseID, studentID)
	return e, nil
}

// UpdateProgress marks moduleID as completed (or not) and returns the recomputed enrollment.
// Nothing is dispatched when the module is already in the requested state.
func (svc *EnrollmentService) UpdateProgress(
	ctx context.Context,
	courseID, studentID, moduleID string,
	completed bool,
) (Enrollment, error) {
	courseID, studentID = core.CleanString(courseID), core.CleanString(studentID)
	moduleID = core.CleanString(moduleID)
	if err := validateIDs(courseID, studentID); err != nil {
		return Enrollment{}, err
	}

	e, err := svc.GetEnrollment(ctx, courseID, studentID)
	if err != nil {
		return Enrollment{}, err
	}
	crs, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if !crs.HasModule(moduleID) {
		return Enrollment{}, core.NewValidationError(nil, core.FieldError{
			Field: "moduleId",
			Error: "module does not belong to the course",
		})
	}
	if e.HasCompleted(moduleID) == completed {
		return e, nil
	}

	gen := svc.cache.Generation()
	updated, err := svc.backends.Backend(ctx).UpdateProgress(ctx, courseID, studentID, moduleID, completed)
	if err != nil {
		svc.logger.Error("failed to update progress", err, enrollmentFields(courseID, studentID))
		return Enrollment{}, errors.Wrap(err, "updating progress")
	}
	svc.cache.PutEnrollment(gen, updated)
	return updated.Clone(), nil
}

// GetEnrollment returns the cached enrollment, looking it up on a miss.
// A student who is not enrolled yields a *core.NotFoundError.
func (svc *EnrollmentService) GetEnrollment(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	courseID, studentID = core.CleanString(courseID), core.CleanString(studentID)
	if err := validateIDs(courseID, studentID); err != nil {
		return Enrollment{}, err
	}
	if e, ok := svc.cache.Enrollment(courseID, studentID); ok {
		return e, nil
	}

	ch := svc.lookups.DoChan(pairKey(courseID, studentID), func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		gen := svc.cache.Generation()
		if e, ok := svc.cache.Enrollment(courseID, studentID); ok {
			return e, nil
		}
		e, err := svc.backends.Backend(ctx).GetEnrollment(ctx, courseID, studentID)
		if err != nil {
			return nil, err
		}
		e, _ = svc.cache.PutEnrollmentIfAbsent(gen, e)
		return e, nil
	})

	var v interface{}
	var err error
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		return Enrollment{}, errors.Wrap(ctx.Err(), "getting enrollment")
	}
	if err != nil {
		if !core.IsNotFound(err) {
			svc.logger.Error("failed to get enrollment", err, enrollmentFields(courseID, studentID))
		}
		return Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return v.(Enrollment).Clone(), nil
}

// ListEnrollments refreshes the cached enrollments and returns those of studentID.
func (svc *EnrollmentService) ListEnrollments(ctx context.Context, studentID string) ([]Enrollment, error) {
	studentID = core.CleanString(studentID)

	gen := svc.cache.Generation()
	all, err := svc.backends.Backend(ctx).ListEnrollments(ctx, studentID)
	if err != nil {
		svc.logger.Error("failed to list enrollments", err, map[string]interface{}{"studentId": studentID})
		return []Enrollment{}, errors.Wrap(err, "listing enrollments")
	}
	if !svc.cache.ReplaceEnrollments(gen, all) {
		svc.logger.Debug("data mode changed while listing enrollments, result not cached")
		enrollments := make([]Enrollment, 0, len(all))
		for _, e := range all {
			if e.StudentID == studentID {
				enrollments = append(enrollments, e.Clone())
			}
		}
		return enrollments, nil
	}
	return svc.cache.StudentEnrollments(studentID), nil
}

// ListEnrolledCourses returns the courses studentID is enrolled in.
//
// The backend's answer wins over the cache: returned courses replace their cached copies,
// and cached courses the backend did not return stop listing the student.
func (svc *EnrollmentService) ListEnrolledCourses(ctx context.Context, studentID string) ([]Course, error) {
	studentID = core.CleanString(studentID)

	gen := svc.cache.Generation()
	courses, err := svc.backends.Backend(ctx).ListEnrolledCourses(ctx, studentID)
	if err != nil {
		svc.logger.Error("failed to list enrolled courses", err, map[string]interface{}{"studentId": studentID})
		return []Course{}, errors.Wrap(err, "listing enrolled courses")
	}

	enrolled := make(map[string]struct{}, len(courses))
	result := make([]Course, 0, len(courses))
	for _, crs := range courses {
		crs.AddStudent(studentID)
		enrolled[crs.ID] = struct{}{}
		svc.cache.PutCourse(gen, crs)
		result = append(result, crs.Clone())
	}
	for _, crs := range svc.cache.Courses() {
		if _, ok := enrolled[crs.ID]; !ok && crs.HasStudent(studentID) {
			svc.cache.RemoveStudent(gen, crs.ID, studentID)
		}
	}
	return result, nil
}

// StudentsByCourse returns the ids of the students known to be enrolled in courseID,
// from both the cached course membership and the cached enrollments.
func (svc *EnrollmentService) StudentsByCourse(courseID string) []string {
	var students []string
	if crs, ok := svc.cache.Course(courseID); ok {
		students = append(students, crs.EnrolledStudents...)
	}
	for _, e := range svc.cache.CourseEnrollments(courseID) {
		if !contains(students, e.StudentID) {
			students = append(students, e.StudentID)
		}
	}
	if students == nil {
		return []string{}
	}
	return students
}

func validateIDs(courseID, studentID string) error {
	var flds []core.FieldError
	if courseID == "" {
		flds = append(flds, core.FieldError{Field: "courseId", Error: "courseId is required"})
	}
	if studentID == "" {
		flds = append(flds, core.FieldError{Field: "studentId", Error: "studentId is required"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func pairKey(courseID, studentID string) string {
	return courseID + "\x00" + studentID
}

func enrollmentFields(courseID, studentID string) map[string]interface{} {
	return map[string]interface{}{"courseId": courseID, "studentId": studentID}
}
