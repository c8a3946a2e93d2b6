// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/coursepath/core"
	"github.com/trezcool/coursepath/core/course"
	"github.com/trezcool/coursepath/services/auth"
	"github.com/trezcool/coursepath/storage/localstore"
	"github.com/trezcool/coursepath/storage/mock"
)

// Now is the clock of every fixture backend.
var Now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// Config returns the configuration used by the tests, without reading the environment.
func Config() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "CoursePath",
		Build:    "test",
		Gateway: core.GatewayConfig{
			Timeout:      5 * time.Second,
			ProbeTimeout: time.Second,
		},
		Demo: core.DemoConfig{Store: core.DemoStoreMemory},
		Server: core.ServerConfig{
			SecretKey:          "test-secret",
			JWTExpirationDelta: time.Hour,
		},
	}
}

func NewIssuer() *auth.Issuer {
	return auth.NewIssuer(Config())
}

// StudentToken returns a signed token for studentID; an empty id gets an admin token.
func StudentToken(t *testing.T, issuer *auth.Issuer, studentID string) string {
	t.Helper()
	token, err := issuer.Token(context.Background(), studentID)
	if err != nil {
		t.Fatalf("StudentToken() failed: %v", err)
	}
	return token
}

func NewDemoBackend() *mock.Backend {
	return mock.NewBackend(localstore.NewMemoryStore(), mock.WithClock(func() time.Time { return Now }))
}

// CreateCourse stores a course with the given module ids through backend.
func CreateCourse(t *testing.T, backend course.Backend, title string, moduleIDs ...string) course.Course {
	t.Helper()
	nc := course.NewCourse{
		Title:       title,
		Description: title + " description",
		Thumbnail:   "https://placehold.co/600x400",
		Instructor:  "Test Instructor",
		Duration:    "1 week",
	}
	for _, id := range moduleIDs {
		nc.Modules = append(nc.Modules, course.Module{ID: id, Title: "Module " + id, Content: "content " + id})
	}
	crs, err := backend.CreateCourse(context.Background(), nc)
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

// Gateway is a live course.Backend over an in-memory dataset. It counts dispatched calls
// and can be taken down to simulate an unreachable gateway.
type Gateway struct {
	*mock.Backend

	mutex sync.Mutex
	down  bool
	calls map[string]int
	delay time.Duration
	holds map[string]*hold
}

type hold struct {
	entered chan struct{}
	release chan struct{}
}

var _ course.Backend = (*Gateway)(nil)
var _ course.Prober = (*Gateway)(nil)

func NewGateway() *Gateway {
	return &Gateway{
		Backend: mock.NewBackend(
			localstore.NewMemoryStore(),
			mock.WithIDPrefix("gw-"),
			mock.WithClock(func() time.Time { return Now }),
		),
		calls: make(map[string]int),
		holds: make(map[string]*hold),
	}
}

func (g *Gateway) Mode() course.Mode { return course.ModeLive }

func (g *Gateway) SetDown(down bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.down = down
}

// SetDelay makes every call wait d before answering.
func (g *Gateway) SetDelay(d time.Duration) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.delay = d
}

// Calls returns how many times op was dispatched.
func (g *Gateway) Calls(op string) int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.calls[op]
}

// Hold makes the next call to op block until release is called. The entered channel is
// closed once that call is blocked. A held call gives up when its context is done.
func (g *Gateway) Hold(op string) (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	g.mutex.Lock()
	g.holds[op] = h
	g.mutex.Unlock()

	var once sync.Once
	return h.entered, func() { once.Do(func() { close(h.release) }) }
}

func (g *Gateway) call(ctx context.Context, op string) error {
	g.mutex.Lock()
	g.calls[op]++
	down, delay := g.down, g.delay
	h := g.holds[op]
	delete(g.holds, op)
	g.mutex.Unlock()

	if h != nil {
		close(h.entered)
		select {
		case <-h.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if down {
		return core.NewConnectivityError(op, errors.New("connection refused"))
	}
	return nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	if err := g.call(ctx, "Ping"); err != nil {
		return err
	}
	return ctx.Err()
}

func (g *Gateway) ListCourses(ctx context.Context) ([]course.Course, error) {
	if err := g.call(ctx, "ListCourses"); err != nil {
		return nil, err
	}
	return g.Backend.ListCourses(ctx)
}

func (g *Gateway) GetCourse(ctx context.Context, id string) (course.Course, error) {
	if err := g.call(ctx, "GetCourse"); err != nil {
		return course.Course{}, err
	}
	return g.Backend.GetCourse(ctx, id)
}

func (g *Gateway) CreateCourse(ctx context.Context, nc course.NewCourse) (course.Course, error) {
	if err := g.call(ctx, "CreateCourse"); err != nil {
		return course.Course{}, err
	}
	return g.Backend.CreateCourse(ctx, nc)
}

func (g *Gateway) UpdateCourse(ctx context.Context, uc course.UpdateCourse) (course.Course, error) {
	if err := g.call(ctx, "UpdateCourse"); err != nil {
		return course.Course{}, err
	}
	return g.Backend.UpdateCourse(ctx, uc)
}

// DeleteCourse answers like a REST gateway: deleting an unknown course is a not found error.
func (g *Gateway) DeleteCourse(ctx context.Context, id string) error {
	if err := g.call(ctx, "DeleteCourse"); err != nil {
		return err
	}
	if _, err := g.Backend.GetCourse(ctx, id); err != nil {
		return err
	}
	return g.Backend.DeleteCourse(ctx, id)
}

func (g *Gateway) Enroll(ctx context.Context, courseID, studentID string) (course.Enrollment, error) {
	if err := g.call(ctx, "Enroll"); err != nil {
		return course.Enrollment{}, err
	}
	return g.Backend.Enroll(ctx, courseID, studentID)
}

func (g *Gateway) UpdateProgress(
	ctx context.Context,
	courseID, studentID, moduleID string,
	completed bool,
) (course.Enrollment, error) {
	if err := g.call(ctx, "UpdateProgress"); err != nil {
		return course.Enrollment{}, err
	}
	return g.Backend.UpdateProgress(ctx, courseID, studentID, moduleID, completed)
}

func (g *Gateway) GetEnrollment(ctx context.Context, courseID, studentID string) (course.Enrollment, error) {
	if err := g.call(ctx, "GetEnrollment"); err != nil {
		return course.Enrollment{}, err
	}
	return g.Backend.GetEnrollment(ctx, courseID, studentID)
}

func (g *Gateway) ListEnrollments(ctx context.Context, studentID string) ([]course.Enrollment, error) {
	if err := g.call(ctx, "ListEnrollments"); err != nil {
		return nil, err
	}
	return g.Backend.ListEnrollments(ctx, studentID)
}

func (g *Gateway) ListEnrolledCourses(ctx context.Context, studentID string) ([]course.Course, error) {
	if err := g.call(ctx, "ListEnrolledCourses"); err != nil {
		return nil, err
	}
	return g.Backend.ListEnrolledCourses(ctx, studentID)
}

// Entry is a message recorded by Logger.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records every message it is given.
type Logger struct {
	mutex   sync.Mutex
	entries []Entry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

func (l *Logger) Entries() []Entry {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Contains reports whether a message at level contains substr.
func (l *Logger) Contains(level, substr string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

func (l *Logger) String() string {
	var sb strings.Builder
	for _, e := range l.Entries() {
		_, _ = fmt.Fprintf(&sb, "[%s] %s %v\n", e.Level, e.Msg, e.Args)
	}
	return sb.String()
}
