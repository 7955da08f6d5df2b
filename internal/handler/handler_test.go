package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
	"inkstand/internal/lock"
	serviceCMS "inkstand/internal/service/cms"
	"inkstand/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) httputil.Envelope {
	t.Helper()
	var raw struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return httputil.Envelope{Code: raw.Code, Message: raw.Message}
}

// stubItems records the last request and returns canned results
type stubItems struct {
	cmsSvc.ItemService
	reorder *cmsSvc.ReorderRequest
	desc    *cmsSvc.UpdateDescriptionRequest
	deleted *cmsSvc.DeleteItemRequest
	err     error
}

func (s *stubItems) Reorder(_ context.Context, req *cmsSvc.ReorderRequest) ([]models.Node, error) {
	s.reorder = req
	return []models.Node{{ID: req.ID, Order: req.DropRank}}, s.err
}

func (s *stubItems) UpdateDescription(_ context.Context, req *cmsSvc.UpdateDescriptionRequest) (*models.Node, error) {
	s.desc = req
	return &models.Node{ID: req.ID, Description: req.Description}, s.err
}

func (s *stubItems) Delete(_ context.Context, req *cmsSvc.DeleteItemRequest) error {
	s.deleted = req
	return s.err
}

func (s *stubItems) GetTree(_ context.Context, _ *string, _ string) ([]*models.TreeNode, error) {
	return []*models.TreeNode{{ID: "f", Kind: models.KindFolder, Name: "Notes"}}, s.err
}

func serve(h http.HandlerFunc, method, target, body string, ctx func(*http.Request) *http.Request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if ctx != nil {
		req = ctx(req)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func asUser(r *http.Request) *http.Request {
	return httputil.WithUserID(r, "user-1")
}

func TestReorderBodyRules(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantParent *string
	}{
		{"root move", `{"itemId":"a","type":"folder","dropOrder":2,"newParentFolderId":null}`, http.StatusOK, nil},
		{"into folder", `{"itemId":"a","type":"article","dropOrder":0,"newParentFolderId":"f1"}`, http.StatusOK, strPtr("f1")},
		{"missing dropOrder", `{"itemId":"a","type":"folder","newParentFolderId":null}`, http.StatusBadRequest, nil},
		{"missing parent", `{"itemId":"a","type":"folder","dropOrder":1}`, http.StatusBadRequest, nil},
		{"bad json", `{`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := &stubItems{}
			h := NewFolderHandler(items, discardLogger())
			rec := serve(h.Reorder, http.MethodPatch, "/api/folder/order", tt.body, asUser)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus != http.StatusOK {
				if items.reorder != nil {
					t.Error("service called for an invalid body")
				}
				return
			}
			if items.reorder.UserID != "user-1" {
				t.Errorf("user = %q", items.reorder.UserID)
			}
			got, want := items.reorder.NewParentID, tt.wantParent
			if (got == nil) != (want == nil) || (got != nil && *got != *want) {
				t.Errorf("parent = %v, want %v", got, want)
			}
		})
	}
}

func TestUpdateDescriptionNullClears(t *testing.T) {
	items := &stubItems{}
	h := NewFolderHandler(items, discardLogger())

	rec := serve(h.UpdateDescription, http.MethodPatch, "/api/folder/desc", `{"folderId":"f1","newDesc":null}`, asUser)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if items.desc.ID != "f1" || items.desc.Description != "" {
		t.Errorf("request = %+v", items.desc)
	}

	rec = serve(h.UpdateDescription, http.MethodPatch, "/api/folder/desc", `{"folderId":"f1"}`, asUser)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("absent newDesc status = %d, want 400", rec.Code)
	}
}

func TestDeleteItemReadsQuery(t *testing.T) {
	items := &stubItems{}
	h := NewFolderHandler(items, discardLogger())

	rec := serve(h.DeleteItem, http.MethodDelete, "/api/folder?itemId=a1&type=article", "", asUser)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if items.deleted.ID != "a1" || items.deleted.Kind != models.KindArticle {
		t.Errorf("request = %+v", items.deleted)
	}
}

func TestErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Message: "bad"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", domain.ErrNotFound), http.StatusNotFound},
		{&domain.ForbiddenError{Message: "no"}, http.StatusForbidden},
		{&domain.ConflictError{Message: "dup"}, http.StatusConflict},
		{fmt.Errorf("merge: %w", domain.ErrIntegrity), http.StatusInternalServerError},
		{fmt.Errorf("disk: %w", domain.ErrStorage), http.StatusInternalServerError},
		{fmt.Errorf("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		items := &stubItems{err: tt.err}
		h := NewFolderHandler(items, discardLogger())
		rec := serve(h.GetFolders, http.MethodGet, "/api/folder", "", nil)
		if rec.Code != tt.want {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
		env := decodeEnvelope(t, rec, nil)
		if env.Code != httputil.CodeError {
			t.Errorf("%v: envelope code = %d", tt.err, env.Code)
		}
		if tt.want == http.StatusInternalServerError && strings.Contains(env.Message, "disk") {
			t.Errorf("internal detail leaked: %q", env.Message)
		}
	}
}

func TestGetFoldersReturnsTree(t *testing.T) {
	h := NewFolderHandler(&stubItems{}, discardLogger())
	rec := serve(h.GetFolders, http.MethodGet, "/api/folder", "", nil)

	var tree []map[string]interface{}
	env := decodeEnvelope(t, rec, &tree)
	if env.Code != httputil.CodeOK || len(tree) != 1 {
		t.Fatalf("envelope = %+v, tree = %v", env, tree)
	}
	if _, ok := tree[0]["children"]; !ok {
		t.Error("folder without children key")
	}
}

type stubSites struct {
	cmsSvc.SiteService
	taken map[string]bool
}

func (s *stubSites) CheckSubdomain(_ context.Context, subdomain string) (bool, error) {
	return !s.taken[subdomain], nil
}

func TestCheckSubdomainReportsAvailability(t *testing.T) {
	h := NewSiteHandler(&stubSites{taken: map[string]bool{"alice": true}}, discardLogger())

	for sub, want := range map[string]bool{"alice": false, "bob": true} {
		rec := serve(h.CheckSubdomain, http.MethodPost, "/api/site/check", `{"subdomain":"`+sub+`"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", sub, rec.Code)
		}
		var data struct {
			Available bool `json:"available"`
		}
		decodeEnvelope(t, rec, &data)
		if data.Available != want {
			t.Errorf("%s: available = %v, want %v", sub, data.Available, want)
		}
	}
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*models.UploadSession
}

func (m *memorySessions) Get(_ context.Context, hash, name string) (*models.UploadSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[hash+"/"+name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *s
	c.Received = s.Received.Clone()
	return &c, nil
}

func (m *memorySessions) Save(_ context.Context, s *models.UploadSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	c.Received = s.Received.Clone()
	m.sessions[s.Hash+"/"+s.Name] = &c
	return nil
}

func newUploadMux(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := serviceCMS.NewUploadService(
		&memorySessions{sessions: map[string]*models.UploadSession{}},
		store, lock.NewKeyedMutex(), 1<<10, discardLogger(),
	)
	h := NewUploadHandler(svc, 1<<10, "", discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", h.UploadChunk)
	mux.HandleFunc("GET /api/public/{file}", h.ServePublic)
	return mux
}

func chunkRequest(t *testing.T, fields map[string]string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if data != nil {
		part, err := mw.CreateFormFile("file", "blob")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "http://blog.test/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadChunksThenServe(t *testing.T) {
	mux := newUploadMux(t)
	parts := [][]byte{[]byte("hello, "), []byte("world")}

	var last cmsSvc.UploadResult
	for _, idx := range []int{1, 0} {
		req := chunkRequest(t, map[string]string{
			"name":        "greeting.txt",
			"size":        "12",
			"type":        "text/plain",
			"hash":        "abcdef",
			"chunkIndex":  fmt.Sprint(idx),
			"totalChunks": "2",
		}, parts[idx])
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("chunk %d: status %d %s", idx, rec.Code, rec.Body)
		}
		decodeEnvelope(t, rec, &last)
	}

	if last.Status != cmsSvc.UploadComplete || last.URL != "http://blog.test/api/public/abcdef.txt" {
		t.Fatalf("result = %+v", last)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/abcdef.txt", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "hello, world" {
		t.Errorf("serve = %d %q", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/temp", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("temp dir served with status %d", rec.Code)
	}
}

func TestUploadRejectsBadForms(t *testing.T) {
	mux := newUploadMux(t)
	valid := map[string]string{
		"name": "a.bin", "size": "3", "type": "application/octet-stream",
		"hash": "h1", "chunkIndex": "0", "totalChunks": "2",
	}
	without := func(key string) map[string]string {
		m := map[string]string{}
		for k, v := range valid {
			if k != key {
				m[k] = v
			}
		}
		return m
	}

	tests := []struct {
		name   string
		fields map[string]string
		data   []byte
	}{
		{"no file", valid, nil},
		{"no chunk index", without("chunkIndex"), []byte("abc")},
		{"non-numeric total", func() map[string]string { m := without("totalChunks"); m["totalChunks"] = "two"; return m }(), []byte("abc")},
		{"oversized chunk", valid, bytes.Repeat([]byte("x"), 4<<10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, chunkRequest(t, tt.fields, tt.data))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", rec.Code, rec.Body)
			}
		})
	}
}

func strPtr(s string) *string {
	return &s
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	up := NewHealthHandler(pingFunc(func(context.Context) error { return nil }), discardLogger())
	if rec := serve(up.HealthCheck, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}

	down := NewHealthHandler(pingFunc(func(context.Context) error { return fmt.Errorf("dial tcp: refused") }), discardLogger())
	rec := serve(down.HealthCheck, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec, nil); env.Code != httputil.CodeError {
		t.Errorf("envelope code = %d", env.Code)
	}
}
