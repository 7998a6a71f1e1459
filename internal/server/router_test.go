package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type pingHandler struct{}

func (pingHandler) Routes() []string { return []string{"/ping", "/healthz"} }
func (pingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("pong"))
}

func TestBasicRouterHandler(t *testing.T) {
	router := NewBasicRouter()
	router.Handler(pingHandler{})

	for _, path := range []string{"/ping", "/healthz"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("unexpected response on %s: %d %q", path, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unregistered path, got %d", rec.Code)
	}
}

func TestBasicRouterMiddleware(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewBasicRouter()
	router.Use(mw("outer"), mw("inner"))
	router.Handler(pingHandler{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	want := []string{"outer", "inner"}
	if len(order) != len(want) {
		t.Fatalf("expected call order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected call order %v, got %v", want, order)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	router := NewBasicRouter()
	router.Use(RequestLogger(logger))
	router.Handler(pingHandler{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Body.String() != "pong" {
		t.Errorf("middleware should pass the request through, got %q", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "/ping") {
		t.Errorf("expected the request path in the log, got %q", buf.String())
	}
}
