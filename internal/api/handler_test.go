package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"applyboost/internal/config"
	"applyboost/internal/extract"
	"applyboost/internal/llm"
	"applyboost/internal/memory"
	"applyboost/internal/prompt"
	"applyboost/internal/schema"
)

type stubGateway struct {
	calls  int
	output string
	err    error
}

func (s *stubGateway) Complete(_ context.Context, _ string, _ llm.Mode) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func (s *stubGateway) Name() string  { return "stub" }
func (s *stubGateway) Model() string { return "stub" }

type stubMemory struct {
	saveID    string
	saveErr   error
	items     []memory.Item
	searchErr error
}

func (s *stubMemory) Save(_ context.Context, _ string, _ []string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	return s.saveID, nil
}

func (s *stubMemory) Search(_ context.Context, _ string, _ int) ([]memory.Item, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.items, nil
}

func (s *stubMemory) Name() string { return "stub" }

func newMux(t *testing.T, gw *stubGateway, mem memory.Store) *http.ServeMux {
	t.Helper()
	cfg := config.Default()
	schemas, err := schema.NewRegistry()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	svc := extract.NewService(prompt.NewRegistry(), schemas, gw, mem, cfg.Memory.SearchLimit, nil)
	handler := NewHandler(cfg, svc, mem, gw)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rec.Body.String())
	}
	return out
}

func TestJDExtractEndpoint(t *testing.T) {
	gw := &stubGateway{output: `{"summary": "Go backend role.", "skills": ["Go", "SQL"], "mustHaves": ["3+ years"]}`}
	mux := newMux(t, gw, &stubMemory{})

	rec := postJSON(t, mux, "/api/jd/extract", map[string]any{"jdText": "We need a Go engineer."})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["summary"] != "Go backend role." {
		t.Fatalf("unexpected body %#v", out)
	}
	if gw.calls != 1 {
		t.Fatalf("expected one completion call, got %d", gw.calls)
	}
}

func TestDetectFraudEndpoint(t *testing.T) {
	gw := &stubGateway{output: `{"is_suspicious": true, "reason": "requests upfront payment", "confidence_score": 0.9}`}
	mux := newMux(t, gw, &stubMemory{})

	rec := postJSON(t, mux, "/api/jd/detect-fraud", map[string]any{
		"jdText": "send your bank details for a registration fee",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if len(out) != 3 {
		t.Fatalf("expected exactly three fields, got %#v", out)
	}
	if out["confidence_score"] != 0.9 {
		t.Fatalf("expected confidence_score 0.9, got %#v", out["confidence_score"])
	}
}

func TestOperationErrorSurface(t *testing.T) {
	gw := &stubGateway{err: fmt.Errorf("%w: status 429", llm.ErrRateLimit)}
	mux := newMux(t, gw, &stubMemory{})

	rec := postJSON(t, mux, "/api/jd/extract", map[string]any{"jdText": "jd"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["error"] == "" || out["error"] == nil {
		t.Fatalf("expected error message, got %#v", out)
	}
	if gw.calls != 1 {
		t.Fatalf("expected exactly one call, got %d", gw.calls)
	}
}

func TestOperationMissingInputNoNetworkCall(t *testing.T) {
	gw := &stubGateway{}
	mux := newMux(t, gw, &stubMemory{})

	rec := postJSON(t, mux, "/api/jd/extract", map[string]any{})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if gw.calls != 0 {
		t.Fatalf("expected zero completion calls, got %d", gw.calls)
	}
}

func TestOutreachWrapsText(t *testing.T) {
	gw := &stubGateway{output: "Hi! I noticed the Engineer role at Acme..."}
	mux := newMux(t, gw, &stubMemory{})

	rec := postJSON(t, mux, "/api/actions/outreach", map[string]any{
		"role":      "Engineer",
		"company":   "Acme",
		"jdSummary": "summary",
		"matches":   []string{"Python", "SQL"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["text"] != "Hi! I noticed the Engineer role at Acme..." {
		t.Fatalf("expected text wrapper, got %#v", out)
	}
}

func TestRecruiterQuestionsWrapsList(t *testing.T) {
	gw := &stubGateway{output: "Q1?\nQ2?\nQ3?"}
	mux := newMux(t, gw, &stubMemory{})

	rec := postJSON(t, mux, "/api/actions/recruiter-questions", map[string]any{
		"jdSummary": "summary",
		"skills":    []string{"Go"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	questions, ok := out["questions"].([]any)
	if !ok || len(questions) != 3 {
		t.Fatalf("expected three questions, got %#v", out)
	}
}

func TestMemorySave(t *testing.T) {
	mux := newMux(t, &stubGateway{}, &stubMemory{saveID: "mem-7"})
	rec := postJSON(t, mux, "/api/memory/save", map[string]any{
		"note": "applied to Acme",
		"tags": []string{"application"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["id"] != "mem-7" {
		t.Fatalf("expected saved id, got %#v", out)
	}
}

func TestMemorySaveFailure(t *testing.T) {
	mux := newMux(t, &stubGateway{}, &stubMemory{saveErr: errors.New("down")})
	rec := postJSON(t, mux, "/api/memory/save", map[string]any{"note": "x"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestMemorySearchDegradesToEmpty(t *testing.T) {
	mux := newMux(t, &stubGateway{}, &stubMemory{searchErr: errors.New("down")})
	rec := postJSON(t, mux, "/api/memory/search", map[string]any{"query": "acme"})
	if rec.Code != http.StatusOK {
		t.Fatalf("search failure must degrade to empty, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	items, ok := out["items"].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("expected empty items, got %#v", out)
	}
}

func TestMemorySearchReturnsContents(t *testing.T) {
	mem := &stubMemory{items: []memory.Item{{Content: "Applied to Acme"}, {Content: "Resume v2"}}}
	mux := newMux(t, &stubGateway{}, mem)
	rec := postJSON(t, mux, "/api/memory/search", map[string]any{"query": "acme"})
	out := decodeBody(t, rec)
	items, _ := out["items"].([]any)
	if len(items) != 2 || items[0] != "Applied to Acme" {
		t.Fatalf("unexpected items %#v", out)
	}
}

func TestTestEndpoint(t *testing.T) {
	gw := &stubGateway{output: "Hello, API is working!"}
	mux := newMux(t, gw, &stubMemory{})
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decodeBody(t, rec)
	if out["status"] != "success" {
		t.Fatalf("expected success status, got %#v", out)
	}
}

func TestMethodGuards(t *testing.T) {
	mux := newMux(t, &stubGateway{}, &stubMemory{})
	req := httptest.NewRequest(http.MethodGet, "/api/jd/extract", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	mux := newMux(t, &stubGateway{}, &stubMemory{})
	req := httptest.NewRequest(http.MethodPost, "/api/jd/extract", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestResumeUploadPlainText(t *testing.T) {
	mux := newMux(t, &stubGateway{}, &stubMemory{})

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "resume.txt", "text/plain", "Go engineer, 5 years.")
	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", &buf)
	req.Header.Set("Content-Type", mw)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["text"] != "Go engineer, 5 years." {
		t.Fatalf("unexpected extracted text %#v", out)
	}
}

func TestResumeUploadUnsupportedType(t *testing.T) {
	mux := newMux(t, &stubGateway{}, &stubMemory{})

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "resume.exe", "application/x-msdownload", "binary")
	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", &buf)
	req.Header.Set("Content-Type", mw)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported type, got %d", rec.Code)
	}
}

func newMultipart(t *testing.T, buf *bytes.Buffer, filename, contentType, content string) string {
	t.Helper()
	w := multipart.NewWriter(buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return w.FormDataContentType()
}
