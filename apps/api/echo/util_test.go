package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	"github.com/trezcool/fdpfeedback/services/metrics"
	inmemdb "github.com/trezcool/fdpfeedback/storage/inmem"
	"github.com/trezcool/fdpfeedback/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

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
	extra    interface{}
}

// failingStore fails every call the way a broken medium would.
type failingStore struct{}

func (failingStore) Append(context.Context, feedback.Response) error {
	return core.NewStoreError(core.Unwritable, "test", errors.New("disk full"))
}

func (failingStore) ReadAll(context.Context) ([]feedback.Response, error) {
	return nil, core.NewStoreError(core.Unreadable, "test", errors.New("connection refused"))
}

func setup(t *testing.T, store feedback.Store) (*Server, testutil.Deps) {
	deps := testutil.NewService(store)
	validate, translator := testutil.NewValidator()

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("metrics.Register() failed: %v", err)
	}

	server, err := NewServer(ServerDeps{
		Conf:        deps.Conf,
		Logger:      deps.Logger,
		FeedbackSvc: deps.Svc,
		MailSvc:     deps.MailSvc,
		Validate:    validate,
		Translator:  translator,
		Registry:    reg,
	})
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	return server, deps
}

func setupMem(t *testing.T, seed ...feedback.Response) (*Server, testutil.Deps, *inmemdb.Store) {
	store := inmemdb.NewStore(seed...)
	server, deps := setup(t, store)
	return server, deps, store
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

func newFormRequest(path string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, server *Server) string {
	req, rec := newRequest(http.MethodPost, "/api/export/token", marchallObj(t, TokenRequest{Password: "letmein"}))
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("getToken() failed: code = %d; body %s", rec.Code, rec.Body.String())
	}
	var res TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return res.Token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
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
