// Package remote talks to the course gateway REST API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepath/core"
	"github.com/trezcool/coursepath/core/course"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultTimeout = 10 * time.Second
)

// TokenFunc returns the bearer token to send on behalf of studentID.
// An empty studentID asks for the token of a non-student (anonymous or admin) call.
type TokenFunc func(ctx context.Context, studentID string) (string, error)

// StaticToken sends the same token on every call.
func StaticToken(token string) TokenFunc {
	return func(context.Context, string) (string, error) { return token, nil }
}

// Backend implements course.Backend and course.Prober against the gateway.
type Backend struct {
	client *resty.Client
	token  TokenFunc
}

var (
	_ course.Backend = (*Backend)(nil) // interface compliance check
	_ course.Prober  = (*Backend)(nil)
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	Token   TokenFunc
	// HTTPClient overrides the transport, e.g. in tests.
	HTTPClient *http.Client
}

func NewBackend(opts Options) *Backend {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Token == nil {
		opts.Token = StaticToken("")
	}

	client := resty.New()
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	}
	client.
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Backend{client: client, token: opts.Token}
}

// NewBackendFromConfig returns a Backend configured by conf.Gateway, sending its static token.
func NewBackendFromConfig(conf *core.Config) *Backend {
	return NewBackend(Options{
		BaseURL: conf.Gateway.BaseURL,
		Timeout: conf.Gateway.Timeout,
		Token:   StaticToken(conf.Gateway.Token),
	})
}

func (b *Backend) Mode() course.Mode { return course.ModeLive }

// request returns a request carrying the token of studentID.
func (b *Backend) request(ctx context.Context, studentID string) (*resty.Request, error) {
	token, err := b.token(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "getting gateway token")
	}
	req := b.client.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req, nil
}

// Ping checks /health, falling back to /courses/all for gateways without a health endpoint.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := b.request(ctx, "")
	if err != nil {
		return err
	}
	resp, err := req.Get("/health")
	if err == nil && resp.IsSuccess() {
		return nil
	}

	req, err = b.request(ctx, "")
	if err != nil {
		return err
	}
	resp, err = req.Get("/courses/all")
	if err != nil {
		return core.NewConnectivityError("ping", err)
	}
	if !resp.IsSuccess() {
		return core.NewConnectivityError("ping", errors.Errorf("unexpected status %d", resp.StatusCode()))
	}
	return nil
}

// Courses

func (b *Backend) ListCourses(ctx context.Context) ([]course.Course, error) {
	var courses []course.Course
	if err := b.do(ctx, "", http.MethodGet, "/courses/all", nil, &courses, notFound{}); err != nil {
		return nil, err
	}
	return normalizeCourses(courses), nil
}

func (b *Backend) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	path := "/courses/" + url.PathEscape(id)
	if err := b.do(ctx, "", http.MethodGet, path, nil, &crs, notFound{"course", id}); err != nil {
		return course.Course{}, err
	}
	return crs.Clone(), nil
}

func (b *Backend) CreateCourse(ctx context.Context, nc course.NewCourse) (course.Course, error) {
	var crs course.Course
	if err := b.do(ctx, "", http.MethodPost, "/courses/admin/create", nc, &crs, notFound{}); err != nil {
		return course.Course{}, err
	}
	return crs.Clone(), nil
}

func (b *Backend) UpdateCourse(ctx context.Context, uc course.UpdateCourse) (course.Course, error) {
	var crs course.Course
	path := "/courses/admin/" + url.PathEscape(uc.ID)
	if err := b.do(ctx, "", http.MethodPut, path, uc, &crs, notFound{"course", uc.ID}); err != nil {
		return course.Course{}, err
	}
	return crs.Clone(), nil
}

func (b *Backend) DeleteCourse(ctx context.Context, id string) error {
	path := "/courses/admin/" + url.PathEscape(id)
	return b.do(ctx, "", http.MethodDelete, path, nil, nil, notFound{"course", id})
}

// Enrollments

type enrollRequest struct {
	CourseID string `json:"courseId"`
}

type progressRequest struct {
	ModuleID  string `json:"moduleId"`
	Completed bool   `json:"completed"`
}

func (b *Backend) Enroll(ctx context.Context, courseID, studentID string) (course.Enrollment, error) {
	var e course.Enrollment
	body := enrollRequest{CourseID: courseID}
	if err := b.do(ctx, studentID, http.MethodPost, "/courses/enroll", body, &e, notFound{"course", courseID}); err != nil {
		return course.Enrollment{}, err
	}
	return e.Clone(), nil
}

func (b *Backend) UpdateProgress(
	ctx context.Context,
	courseID, studentID, moduleID string,
	completed bool,
) (course.Enrollment, error) {
	var e course.Enrollment
	path := "/courses/progress/" + url.PathEscape(courseID)
	body := progressRequest{ModuleID: moduleID, Completed: completed}
	nf := notFound{"enrollment", courseID + "/" + studentID}
	if err := b.do(ctx, studentID, http.MethodPost, path, body, &e, nf); err != nil {
		return course.Enrollment{}, err
	}
	return e.Clone(), nil
}

func (b *Backend) GetEnrollment(ctx context.Context, courseID, studentID string) (course.Enrollment, error) {
	var e course.Enrollment
	path := "/courses/enrollment/" + url.PathEscape(courseID)
	nf := notFound{"enrollment", courseID + "/" + studentID}
	if err := b.do(ctx, studentID, http.MethodGet, path, nil, &e, nf); err != nil {
		return course.Enrollment{}, err
	}
	return e.Clone(), nil
}

func (b *Backend) ListEnrollments(ctx context.Context, studentID string) ([]course.Enrollment, error) {
	var enrollments []course.Enrollment
	if err := b.do(ctx, studentID, http.MethodGet, "/courses/enrollments", nil, &enrollments, notFound{}); err != nil {
		return nil, err
	}
	out := make([]course.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (b *Backend) ListEnrolledCourses(ctx context.Context, studentID string) ([]course.Course, error) {
	var courses []course.Course
	if err := b.do(ctx, studentID, http.MethodGet, "/courses/enrolled", nil, &courses, notFound{}); err != nil {
		return nil, err
	}
	return normalizeCourses(courses), nil
}

// notFound describes the record a 404 answer refers to.
type notFound struct {
	resource string
	id       string
}

// do sends the request and decodes a successful answer into result.
func (b *Backend) do(
	ctx context.Context,
	studentID, method, path string,
	body, result interface{},
	nf notFound,
) error {
	op := method + " " + path

	req, err := b.request(ctx, studentID)
	if err != nil {
		return err
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return core.NewConnectivityError(op, err)
	}
	if resp.IsSuccess() {
		return nil
	}
	return statusError(op, resp, nf)
}

// statusError maps an unsuccessful gateway answer to the data layer errors.
func statusError(op string, resp *resty.Response, nf notFound) error {
	code := resp.StatusCode()
	switch {
	case code == http.StatusNotFound && nf.resource != "":
		return core.NewNotFoundError(nf.resource, nf.id)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return validationError(resp.Body())
	case code >= http.StatusInternalServerError, code == http.StatusNotFound:
		return core.NewConnectivityError(op, errors.Errorf("unexpected status %d", code))
	default:
		return errors.Errorf("%s: gateway answered %d: %s", op, code, strings.TrimSpace(resp.String()))
	}
}

// validationError decodes the gateway's 400 body: either {"error": msg} or {field: msg}.
func validationError(body []byte) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = "invalid data"
		}
		return core.NewValidationError(errors.New(msg))
	}
	if msg, ok := payload["error"].(string); ok && len(payload) == 1 {
		return core.NewValidationError(errors.New(msg))
	}

	fields := make([]string, 0, len(payload))
	for f := range payload {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	flds := make([]core.FieldError, 0, len(fields))
	for _, f := range fields {
		flds = append(flds, core.FieldError{Field: f, Error: fmt.Sprint(payload[f])})
	}
	return core.NewValidationError(nil, flds...)
}

func normalizeCourses(courses []course.Course) []course.Course {
	out := make([]course.Course, 0, len(courses))
	for _, crs := range courses {
		out = append(out, crs.Clone())
	}
	return out
}
