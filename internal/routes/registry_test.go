package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmbeddedTableLoads(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		pattern string
		want    AuthLevel
	}{
		{"GET /api/folder", Public},
		{"POST /api/folder", Required},
		{"PATCH /api/folder/order", Required},
		{"POST /api/upload", Public},
		{"GET /api/public/{file}", Public},
		{"POST /api/site/init", Required},
		{"POST /api/site/visit", Public},
		{"GET /api/site/visit/stats", Required},
		{"GET /api/diary/timeline", Public},
		{"PUT /api/diary", Required},
		{"DELETE /api/base/carousel", Required},
		{"POST /api/base/project/like", Public},
	}
	for _, tt := range tests {
		level, ok := r.Level(tt.pattern)
		if !ok || level != tt.want {
			t.Errorf("Level(%q) = %q, %v; want %q", tt.pattern, level, ok, tt.want)
		}
	}
}

func TestParseRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown level", "routes:\n  - {method: GET, path: /x, auth: admin}\n"},
		{"duplicate", "routes:\n  - {method: GET, path: /x, auth: public}\n  - {method: get, path: /x, auth: required}\n"},
		{"relative path", "routes:\n  - {method: GET, path: x, auth: public}\n"},
		{"not yaml", "routes: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRouterWrapsRequiredRoutes(t *testing.T) {
	reg, err := Parse([]byte(`
routes:
  - {method: GET, path: /open, auth: public}
  - {method: POST, path: /closed, auth: required}
  - {method: GET, path: /forgotten, auth: public}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	mux := http.NewServeMux()
	router := NewRouter(mux, reg, deny)
	router.HandleFunc("GET /open", ok)
	router.HandleFunc("POST /closed", ok)
	router.HandleFunc("DELETE /unlisted", ok)

	for path, want := range map[string]int{"/open": http.StatusOK} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, want)
		}
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/closed", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /closed = %d, want 401", rec.Code)
	}

	err = router.Verify()
	if err == nil {
		t.Fatal("Verify should report the unlisted route and the missing handler")
	}
	msg := err.Error()
	if !strings.Contains(msg, "DELETE /unlisted") || !strings.Contains(msg, "GET /forgotten") {
		t.Errorf("Verify error = %q", msg)
	}
}
