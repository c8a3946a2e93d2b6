package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	. "github.com/trezcool/coursepath/apps/gateway/echo"
	"github.com/trezcool/coursepath/core/course"
	"github.com/trezcool/coursepath/services/auth"
	"github.com/trezcool/coursepath/storage/localstore"
	"github.com/trezcool/coursepath/storage/mock"
	"github.com/trezcool/coursepath/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	Server
	backend *mock.Backend
	issuer  *auth.Issuer
	logger  *testutil.Logger
}

func setup(t *testing.T) testApp {
	t.Helper()
	app := testApp{
		backend: mock.NewBackend(localstore.NewMemoryStore(), mock.WithIDPrefix("")),
		issuer:  testutil.NewIssuer(),
		logger:  new(testutil.Logger),
	}
	app.Server = NewServer(&Options{
		DisableReqLogs: true,
		Backend:        app.backend,
		Issuer:         app.issuer,
		Logger:         app.logger,
	})
	return app
}

func (app testApp) token(t *testing.T, studentID string) string {
	return testutil.StudentToken(t, app.issuer, studentID)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshall(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newCourse(title string, moduleIDs ...string) course.NewCourse {
	nc := course.NewCourse{
		Title:       title,
		Description: title + " description",
		Thumbnail:   "https://placehold.co/600x400",
		Instructor:  "Test Instructor",
		Duration:    "1 week",
	}
	for _, id := range moduleIDs {
		nc.Modules = append(nc.Modules, course.Module{ID: id, Title: "Module " + id, Content: "content"})
	}
	return nc
}
