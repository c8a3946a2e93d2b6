package course

import "context"

type (
	// Backend is the source of truth the sync services dispatch to: the remote gateway in
	// live mode, the mock catalog in demo mode.
	//
	// Implementations return *core.NotFoundError for missing records,
	// *core.ConnectivityError when the source cannot be reached and
	// *core.ValidationError for rejected payloads.
	Backend interface {
		Mode() Mode

		ListCourses(ctx context.Context) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		CreateCourse(ctx context.Context, nc NewCourse) (Course, error)
		UpdateCourse(ctx context.Context, uc UpdateCourse) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		Enroll(ctx context.Context, courseID, studentID string) (Enrollment, error)
		UpdateProgress(ctx context.Context, courseID, studentID, moduleID string, completed bool) (Enrollment, error)
		GetEnrollment(ctx context.Context, courseID, studentID string) (Enrollment, error)
		// ListEnrollments returns every enrollment visible to studentID. The gateway only
		// shows the student's own; the mock dataset shows them all.
		ListEnrollments(ctx context.Context, studentID string) ([]Enrollment, error)
		ListEnrolledCourses(ctx context.Context, studentID string) ([]Course, error)
	}

	// Prober checks whether the remote gateway is reachable.
	Prober interface {
		Ping(ctx context.Context) error
	}

	// BackendSelector hands out the Backend for the current Mode.
	BackendSelector interface {
		Backend(ctx context.Context) Backend
	}
)
