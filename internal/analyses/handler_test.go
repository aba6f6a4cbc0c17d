package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupAnalysisRouter(conv *stubConverter, model *stubLLM, repo *stubSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &Handler{Service: newTestService(conv, model, repo)}
	api := r.Group("/api/v1")
	handler.RegisterRoutes(api)
	return r
}

func multipartUpload(t *testing.T, fileName, contentType string, data []byte, sessionID string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	fw, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if sessionID != "" {
		if err := mw.WriteField("anon_session_id", sessionID); err != nil {
			t.Fatalf("write session field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	conv := &stubConverter{urls: []string{"https://cdn.example.com/page-1.jpg"}}
	model := &stubLLM{text: "resume text", analysis: goodAnalysis}
	repo := &stubSessions{}
	router := setupAnalysisRouter(conv, model, repo)

	body, contentType := multipartUpload(t, "resume.pdf", "application/pdf", []byte("%PDF-1.4"), "sess-1")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-resume", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Success  bool           `json:"success"`
		Message  string         `json:"message"`
		Analysis AnalysisResult `json:"analysis"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success=true")
	}
	if envelope.Message != "Resume analyzed successfully!" {
		t.Fatalf("unexpected message %q", envelope.Message)
	}
	if envelope.Analysis.OverallScore != 80 {
		t.Fatalf("expected overall 80, got %d", envelope.Analysis.OverallScore)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected session saved, got %d upserts", len(repo.upserted))
	}
}

func TestAnalyzeEndpointMissingFile(t *testing.T) {
	router := setupAnalysisRouter(&stubConverter{}, &stubLLM{}, &stubSessions{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("anon_session_id", "sess-1"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Success {
		t.Fatalf("expected success=false")
	}
	if envelope.Error != "No file provided" {
		t.Fatalf("unexpected error %q", envelope.Error)
	}
}

func TestAnalyzeEndpointInvalidType(t *testing.T) {
	router := setupAnalysisRouter(&stubConverter{}, &stubLLM{}, &stubSessions{})

	body, contentType := multipartUpload(t, "resume.txt", "text/plain", []byte("plain text"), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-resume", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("Invalid file type")) {
		t.Fatalf("expected invalid type message, got %s", resp.Body.String())
	}
}

func TestAnalyzeEndpointRunsToCompletionAfterClientDisconnect(t *testing.T) {
	conv := &stubConverter{urls: []string{"https://cdn.example.com/page-1.jpg"}}
	model := &stubLLM{text: "resume text", analysis: goodAnalysis}
	repo := &stubSessions{}
	router := setupAnalysisRouter(conv, model, repo)

	body, contentType := multipartUpload(t, "resume.pdf", "application/pdf", []byte("%PDF-1.4"), "sess-1")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-resume", body)
	req.Header.Set("Content-Type", contentType)

	// Simulate the caller going away before the pipeline starts.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req = req.WithContext(ctx)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected pipeline to run to completion, got %d: %s", resp.Code, resp.Body.String())
	}
	if model.lastCtxErr != nil {
		t.Fatalf("expected pipeline context detached from the request, got %v", model.lastCtxErr)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected session still persisted, got %d upserts", len(repo.upserted))
	}
}

func TestAnalyzeEndpointPipelineFailure(t *testing.T) {
	conv := &stubConverter{urls: []string{"https://cdn.example.com/page-1.jpg"}}
	model := &stubLLM{text: ""}
	router := setupAnalysisRouter(conv, model, &stubSessions{})

	body, contentType := multipartUpload(t, "resume.pdf", "application/pdf", []byte("%PDF-1.4"), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-resume", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("Failed to extract text")) {
		t.Fatalf("expected extraction failure message, got %s", resp.Body.String())
	}
}
