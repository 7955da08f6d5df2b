package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkstand/internal/domain"
	"inkstand/internal/domain/models"
	cmsModels "inkstand/internal/domain/models/cms"
	"inkstand/internal/httputil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubdomainOf(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"example.com", ""},
		{"example.com:8080", ""},
		{"alice.example.com", "alice"},
		{"Alice.Example.com:443", "alice"},
		{"alice.example.com.", "alice"},
		{"www.example.com", ""},
		{"a.b.example.com", ""},
		{"other.org", ""},
		{"badexample.com", ""},
	}
	for _, tt := range tests {
		if got := SubdomainOf(tt.host, "example.com"); got != tt.want {
			t.Errorf("SubdomainOf(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

type stubResolver struct {
	sites map[string]*cmsModels.Site
	err   error
}

func (s *stubResolver) ResolveSubdomain(_ context.Context, sub string) (*cmsModels.Site, error) {
	if s.err != nil {
		return nil, s.err
	}
	site, ok := s.sites[sub]
	if !ok {
		return nil, &domain.NotFoundError{Message: "site not found"}
	}
	return site, nil
}

func TestTenant(t *testing.T) {
	resolver := &stubResolver{sites: map[string]*cmsModels.Site{
		"alice": {ID: "site-a", Subdomain: "alice"},
		"off":   {ID: "site-o", Subdomain: "off", IsOff: true},
	}}

	var seenSite string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSite = "primary"
		if id := httputil.GetSiteID(r); id != nil {
			seenSite = *id
		}
		w.WriteHeader(http.StatusOK)
	})
	h := Tenant(resolver, "example.com", discardLogger())(next)

	tests := []struct {
		host       string
		wantStatus int
		wantSite   string
	}{
		{"example.com", http.StatusOK, "primary"},
		{"alice.example.com", http.StatusOK, "site-a"},
		{"ghost.example.com", http.StatusNotFound, ""},
		{"off.example.com", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			seenSite = ""
			req := httptest.NewRequest(http.MethodGet, "/api/folder", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seenSite != tt.wantSite {
				t.Errorf("site = %q, want %q", seenSite, tt.wantSite)
			}
		})
	}

	resolver.err = errors.New("db down")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "alice.example.com"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("lookup failure status = %d, want 500", rec.Code)
	}
}

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	if token == "good" {
		return &models.Claims{UID: "user-1"}, nil
	}
	return nil, domain.ErrUnauthorized
}

func (stubVerifier) Close() error { return nil }

func TestAuthenticateAndRequireAuth(t *testing.T) {
	var seenUser string
	protected := Authenticate(stubVerifier{}, "token", discardLogger())(
		RequireAuth("token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenUser = httputil.GetUserID(r)
		})),
	)

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantUser   string
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: "good"}) }, http.StatusOK, "user-1"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "user-1"},
		{"bad token", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: "bad"}) }, http.StatusUnauthorized, ""},
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenUser = ""
			req := httptest.NewRequest(http.MethodPost, "/api/folder", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seenUser != tt.wantUser {
				t.Errorf("user = %q, want %q", seenUser, tt.wantUser)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				cleared := false
				for _, c := range rec.Result().Cookies() {
					if c.Name == "token" && c.MaxAge < 0 {
						cleared = true
					}
				}
				if !cleared {
					t.Error("auth cookie not cleared on 401")
				}
				var env httputil.Envelope
				if err := json.NewDecoder(rec.Body).Decode(&env); err != nil || env.Code != httputil.CodeError {
					t.Errorf("body = %+v, %v", env, err)
				}
			}
		})
	}
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRecoveryLeavesStartedResponseAlone(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("partial"))
		panic("late")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusAccepted || rec.Body.String() != "partial" {
		t.Errorf("got %d %q, want untouched partial response", rec.Code, rec.Body)
	}
}
