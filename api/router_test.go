package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expoadmin/api/apitest"
	"expoadmin/api/auth"
	"expoadmin/api/calendar"
	"expoadmin/domain/resource"
	"expoadmin/infrastructure/storage"
)

type testServer struct {
	*apitest.Server
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{Server: apitest.New(t)}

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": apitest.AdminUsername, "password": apitest.AdminPassword}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}
	var login struct {
		Data auth.LoginResponse `json:"data"`
	}
	decode(t, rec, &login)
	ts.token = login.Data.Token
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.Engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
}

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Error      string             `json:"error"`
	Message    string             `json:"message"`
	Field      string             `json:"field"`
	RequestID  string             `json:"request_id"`
	Warnings   []resource.Warning `json:"warnings"`
	Pagination *struct {
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "nope"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)
	for _, token := range []string{"", "garbage"} {
		rec := ts.do(t, http.MethodGet, "/api/v1/testimonials", nil, token)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("token %q: status = %d", token, rec.Code)
		}
	}
}

func TestTestimonialCRUD(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/testimonials", map[string]any{"name": "Jane", "quote": "Great service"}, ts.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var env envelope
	decode(t, rec, &env)
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	_ = json.Unmarshal(env.Data, &created)
	if created.ID == "" || env.RequestID == "" {
		t.Fatalf("created = %+v, request_id = %q", created, env.RequestID)
	}

	rec = ts.do(t, http.MethodPatch, "/api/v1/testimonials/"+created.ID, map[string]any{"rating": 5}, ts.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}

	rec = ts.do(t, http.MethodPatch, "/api/v1/testimonials/"+created.ID, map[string]any{"rating": 7}, ts.token)
	decode(t, rec, &env)
	if rec.Code != http.StatusBadRequest || env.Error != "VALIDATION_ERROR" || env.Field != "rating" {
		t.Errorf("invalid update: %d %+v", rec.Code, env)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/testimonials/"+created.ID, nil, ts.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = ts.do(t, http.MethodDelete, "/api/v1/testimonials/"+created.ID, nil, ts.token)
	decode(t, rec, &env)
	if rec.Code != http.StatusNotFound || env.Error != "NOT_FOUND" {
		t.Errorf("second delete: %d %+v", rec.Code, env)
	}
}

func TestListPagination(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 15; i++ {
		rec := ts.do(t, http.MethodPost, "/api/v1/cities", map[string]any{"name": "City", "slug": "city-" + string(rune('a'+i))}, ts.token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", rec.Code, rec.Body)
		}
	}

	var env envelope
	rec := ts.do(t, http.MethodGet, "/api/v1/cities?page=2&page_size=10", nil, ts.token)
	decode(t, rec, &env)
	var items []map[string]any
	_ = json.Unmarshal(env.Data, &items)
	if len(items) != 5 || env.Pagination == nil || env.Pagination.TotalItems != 15 || env.Pagination.TotalPages != 2 {
		t.Errorf("page 2: len=%d pagination=%+v", len(items), env.Pagination)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/cities?page=2", nil, ts.token)
	decode(t, rec, &env)
	var all resource.PageResult[map[string]any]
	_ = json.Unmarshal(env.Data, &all)
	if len(all.Items) != 15 || all.Total != 15 {
		t.Errorf("mixed params should list everything: %d/%d", len(all.Items), all.Total)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/cities?page=1&page_size=500", nil, ts.token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized page: %d", rec.Code)
	}
}

func TestRevalidationWarning(t *testing.T) {
	ts := newTestServer(t)
	ts.FailRevalidation(true)

	rec := ts.do(t, http.MethodPost, "/api/v1/pages/main-countries", map[string]any{"title": "Where we build"}, ts.token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var env envelope
	decode(t, rec, &env)
	if len(env.Warnings) != 1 || env.Warnings[0].Code != resource.WarningRevalidation {
		t.Errorf("warnings = %+v", env.Warnings)
	}

	ts.FailRevalidation(false)
	rec = ts.do(t, http.MethodPost, "/api/v1/pages/main-countries", map[string]any{"title": "Again"}, ts.token)
	var again envelope
	decode(t, rec, &again)
	if len(again.Warnings) != 0 || len(ts.Revalidated()) != 1 {
		t.Errorf("warnings = %+v, revalidated = %v", again.Warnings, ts.Revalidated())
	}
}

func TestPublicSubmission(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("form_name", "quote")
	_ = w.WriteField("name", "Jane Doe")
	_ = w.WriteField("email", "jane@example.com")
	fw, _ := w.CreateFormFile("brief", "brief.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4 stand brief"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/form-submissions", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.Engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ts.Store.Len() != 1 {
		t.Errorf("stored objects = %d", ts.Store.Len())
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/form-submissions", nil, ts.token)
	var env envelope
	decode(t, rec, &env)
	if !strings.Contains(string(env.Data), "brief.pdf") {
		t.Errorf("submission documents missing: %s", env.Data)
	}
}

func TestMediaUploadAndDelete(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("folder", "blog")
	fw, _ := w.CreateFormFile("file", "cover.png")
	_, _ = fw.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rec := httptest.NewRecorder()
	ts.Engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body)
	}
	var env envelope
	decode(t, rec, &env)
	var obj storage.Object
	_ = json.Unmarshal(env.Data, &obj)
	if !strings.HasPrefix(obj.Path, "blog/") || obj.MimeType != "image/png" {
		t.Errorf("object = %+v", obj)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/media", map[string]string{"url": obj.URL}, ts.token)
	if rec.Code != http.StatusOK || ts.Store.Len() != 0 {
		t.Errorf("delete status = %d, objects = %d", rec.Code, ts.Store.Len())
	}
}

func TestCalendar(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/calendar?value=2026-02-14&week_start=monday", nil, ts.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var env envelope
	decode(t, rec, &env)
	var view calendar.MonthView
	_ = json.Unmarshal(env.Data, &view)
	if view.Month != "2026-02" || len(view.Days)%7 != 0 || len(view.Days) < 28 || view.Weekdays[0] != "Mon" {
		t.Errorf("view = %+v", view)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/calendar?value=14/02/2026", nil, ts.token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad value status = %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/health/ready", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
	rec = ts.do(t, http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "expoadmin_http_requests_total") {
		t.Errorf("metrics missing: %d", rec.Code)
	}
}
