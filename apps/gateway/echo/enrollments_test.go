package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/coursepath/apps/gateway/echo"
	"github.com/trezcool/coursepath/core/course"
)

func Test_courseApi_enroll(t *testing.T) {
	app := setup(t)
	token := app.token(t, "s1")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "without token",
			method:   http.MethodPost,
			path:     "/api/courses/enroll",
			body:     marshallObj(t, EnrollRequest{CourseID: "3"}),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "admin is not a student",
			method:   http.MethodPost,
			path:     "/api/courses/enroll",
			body:     marshallObj(t, EnrollRequest{CourseID: "3"}),
			token:    app.token(t, ""),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "missing course id",
			method:   http.MethodPost,
			path:     "/api/courses/enroll",
			body:     []byte(`{}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"courseId": "courseId is required"}`),
		},
		{
			name:     "unknown course",
			method:   http.MethodPost,
			path:     "/api/courses/enroll",
			body:     marshallObj(t, EnrollRequest{CourseID: "404"}),
			token:    token,
			wantCode: http.StatusNotFound,
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/api/courses/enroll", token, marshallObj(t, EnrollRequest{CourseID: "3"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var e course.Enrollment
	unmarshall(t, rec, &e)
	assert.Equal(t, "3", e.CourseID)
	assert.Equal(t, "s1", e.StudentID, "the student comes from the token")
	assert.Equal(t, 0.0, e.Progress)

	// enrolling twice returns the same enrollment
	req, rec = newAuthRequest(http.MethodPost, "/api/courses/enroll", token, marshallObj(t, EnrollRequest{CourseID: "3"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var again course.Enrollment
	unmarshall(t, rec, &again)
	assert.Equal(t, e.ID, again.ID)
}

func Test_courseApi_updateProgress(t *testing.T) {
	app := setup(t)
	token := app.token(t, "102")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "module of another course",
			method:   http.MethodPost,
			path:     "/api/courses/progress/1",
			body:     marshallObj(t, ProgressRequest{ModuleID: "3-1", Completed: true}),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"moduleId": "module does not belong to the course"}`),
		},
		{
			name:     "unknown course",
			method:   http.MethodPost,
			path:     "/api/courses/progress/404",
			body:     marshallObj(t, ProgressRequest{ModuleID: "1-1", Completed: true}),
			token:    token,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "not enrolled",
			method:   http.MethodPost,
			path:     "/api/courses/progress/1",
			body:     marshallObj(t, ProgressRequest{ModuleID: "1-1", Completed: true}),
			token:    app.token(t, "s9"),
			wantCode: http.StatusNotFound,
		},
	})

	steps := []struct {
		moduleID  string
		completed bool
		want      float64
	}{
		{moduleID: "1-1", completed: true, want: 50},
		{moduleID: "1-2", completed: true, want: 100},
		{moduleID: "1-1", completed: false, want: 50},
	}
	for _, s := range steps {
		body := marshallObj(t, ProgressRequest{ModuleID: s.moduleID, Completed: s.completed})
		req, rec := newAuthRequest(http.MethodPost, "/api/courses/progress/1", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var e course.Enrollment
		unmarshall(t, rec, &e)
		assert.Equal(t, s.want, e.Progress)
	}
}

func Test_courseApi_enrollments(t *testing.T) {
	app := setup(t)
	token := app.token(t, "101")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "not enrolled",
			method:   http.MethodGet,
			path:     "/api/courses/enrollment/3",
			token:    token,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "enrollments without token",
			method:   http.MethodGet,
			path:     "/api/courses/enrollments",
			wantCode: http.StatusUnauthorized,
		},
	})

	req, rec := newAuthRequest(http.MethodGet, "/api/courses/enrollment/1", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var e course.Enrollment
	unmarshall(t, rec, &e)
	assert.Equal(t, "enrollment-1-101", e.ID)

	// another student's enrollment is not listed
	req, rec = newAuthRequest(http.MethodPost, "/api/courses/enroll", app.token(t, "s2"), marshallObj(t, EnrollRequest{CourseID: "3"}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/api/courses/enrollments", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var enrollments []course.Enrollment
	unmarshall(t, rec, &enrollments)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "101", enrollments[0].StudentID)

	req, rec = newAuthRequest(http.MethodGet, "/api/courses/enrolled", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var courses []course.Course
	unmarshall(t, rec, &courses)
	require.Len(t, courses, 2)
	assert.Equal(t, "1", courses[0].ID)
	assert.Equal(t, "2", courses[1].ID)
}
