package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"resume-scan-api/internal/shared/httpx"
	"resume-scan-api/internal/shared/telemetry"
)

const (
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 60 * time.Second
	pollTimeout    = 10 * time.Second

	createRetries      = 2
	createRetryBackoff = 1 * time.Second

	pollInterval    = 2 * time.Second
	maxPollAttempts = 60

	// Fixed render settings for page images fed to vision OCR.
	pixelDensity = 150
	jpegQuality  = 85
)

// Error is a conversion failure with a message safe to show to the end user.
// Status carries the service's HTTP status, or 0 for transport-level failures.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// Client drives a job-based document conversion service: create a job
// describing an upload/convert/export task graph, push the file to the
// returned form URL, then poll until the exported page images are ready.
type Client struct {
	apiURL string
	apiKey string
	call   *httpx.Client

	// Poll cadence, overridable in tests.
	PollInterval    time.Duration
	MaxPollAttempts int
}

// NewClient constructs a conversion client.
func NewClient(apiURL, apiKey string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("CONVERT_API_KEY is required")
	}
	return &Client{
		apiURL:          strings.TrimRight(apiURL, "/"),
		apiKey:          apiKey,
		call:            httpx.New(httpClient),
		PollInterval:    pollInterval,
		MaxPollAttempts: maxPollAttempts,
	}, nil
}

type jobTask struct {
	Operation    string `json:"operation"`
	Input        string `json:"input,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
	AllPages     bool   `json:"all_pages,omitempty"`
	PixelDensity int    `json:"pixel_density,omitempty"`
	Quality      int    `json:"quality,omitempty"`
}

type jobEnvelope struct {
	Data struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Message string `json:"message"`
		Tasks   []struct {
			Name   string `json:"name"`
			Result *struct {
				Form *struct {
					URL        string            `json:"url"`
					Parameters map[string]string `json:"parameters"`
				} `json:"form"`
				Files []struct {
					URL string `json:"url"`
				} `json:"files"`
			} `json:"result"`
		} `json:"tasks"`
	} `json:"data"`
}

// ConvertToJPEG converts a PDF/DOC/DOCX payload into one JPEG URL per page.
// Callers handle images themselves; this client never sees them.
func (c *Client) ConvertToJPEG(ctx context.Context, fileName, mimeType string, data []byte) ([]string, error) {
	inputFormat := detectInputFormat(fileName, mimeType)
	telemetry.Info("convert.start", map[string]any{
		"file_name":    fileName,
		"input_format": inputFormat,
		"size_bytes":   len(data),
	})

	job, err := c.createJob(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.uploadFile(ctx, job, fileName, data); err != nil {
		return nil, err
	}

	urls, err := c.pollJob(ctx, job.Data.ID)
	if err != nil {
		return nil, err
	}

	telemetry.Info("convert.finished", map[string]any{
		"job_id": job.Data.ID,
		"pages":  len(urls),
	})
	return urls, nil
}

func (c *Client) createJob(ctx context.Context) (*jobEnvelope, error) {
	body := map[string]any{
		"tasks": map[string]jobTask{
			"upload-file": {Operation: "import/upload"},
			"convert-to-jpg": {
				Operation:    "convert",
				Input:        "upload-file",
				OutputFormat: "jpg",
				AllPages:     true,
				PixelDensity: pixelDensity,
				Quality:      jpegQuality,
			},
			"export-result": {Operation: "export/url", Input: "convert-to-jpg"},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Message: msgUnavailable, Err: err}
	}

	policy := httpx.Policy{Timeout: defaultTimeout, Retries: createRetries, Backoff: createRetryBackoff}
	resp, err := c.call.Do(ctx, policy, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/jobs", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		if httpx.IsTimeout(err) {
			return nil, &Error{Message: msgTooSlow, Err: err}
		}
		return nil, &Error{Message: msgUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		telemetry.Error("convert.job_create_failed", map[string]any{
			"status": resp.StatusCode,
			"body":   string(detail),
		})
		return nil, statusError(resp.StatusCode)
	}

	var job jobEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, &Error{Message: msgUnavailable, Err: fmt.Errorf("job response parse: %w", err)}
	}
	return &job, nil
}

func (c *Client) uploadFile(ctx context.Context, job *jobEnvelope, fileName string, data []byte) error {
	var formURL string
	var params map[string]string
	for _, task := range job.Data.Tasks {
		if task.Name == "upload-file" && task.Result != nil && task.Result.Form != nil {
			formURL = task.Result.Form.URL
			params = task.Result.Form.Parameters
		}
	}
	if formURL == "" {
		return &Error{Message: msgUnavailable, Err: fmt.Errorf("no upload form in job %s", job.Data.ID)}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range params {
		if err := mw.WriteField(key, value); err != nil {
			return &Error{Message: msgUnavailable, Err: err}
		}
	}
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return &Error{Message: msgUnavailable, Err: err}
	}
	if _, err := fw.Write(data); err != nil {
		return &Error{Message: msgUnavailable, Err: err}
	}
	if err := mw.Close(); err != nil {
		return &Error{Message: msgUnavailable, Err: err}
	}

	policy := httpx.Policy{Timeout: uploadTimeout}
	resp, err := c.call.Do(ctx, policy, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, formURL, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	})
	if err != nil {
		if httpx.IsTimeout(err) {
			return &Error{Message: msgUploadTimeout, Err: err}
		}
		return &Error{Message: msgUnavailable, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Message: msgUnavailable, Err: fmt.Errorf("upload status %d", resp.StatusCode)}
	}
	return nil
}

func (c *Client) pollJob(ctx context.Context, jobID string) ([]string, error) {
	for attempt := 0; attempt < c.MaxPollAttempts; attempt++ {
		select {
		case <-time.After(c.PollInterval):
		case <-ctx.Done():
			return nil, &Error{Message: msgTimedOut, Err: ctx.Err()}
		}

		job, err := c.fetchJob(ctx, jobID)
		if err != nil {
			// Transient status-check failures just consume an attempt.
			telemetry.Info("convert.poll_retry", map[string]any{
				"job_id":  jobID,
				"attempt": attempt,
				"err":     err.Error(),
			})
			continue
		}

		switch job.Data.Status {
		case "finished":
			for _, task := range job.Data.Tasks {
				if task.Name == "export-result" && task.Result != nil && len(task.Result.Files) > 0 {
					urls := make([]string, 0, len(task.Result.Files))
					for _, f := range task.Result.Files {
						urls = append(urls, f.URL)
					}
					return urls, nil
				}
			}
			return nil, &Error{Message: msgUnavailable, Err: fmt.Errorf("job %s finished without output files", jobID)}
		case "error":
			message := job.Data.Message
			if message == "" {
				message = "Unknown conversion error"
			}
			return nil, &Error{Message: "Document conversion failed: " + message}
		}

		if attempt%5 == 0 {
			telemetry.Debug("convert.poll", map[string]any{
				"job_id":  jobID,
				"status":  job.Data.Status,
				"attempt": attempt,
			})
		}
	}

	return nil, &Error{Message: msgTimedOut}
}

func (c *Client) fetchJob(ctx context.Context, jobID string) (*jobEnvelope, error) {
	policy := httpx.Policy{Timeout: pollTimeout}
	resp, err := c.call.Do(ctx, policy, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/jobs/"+jobID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status check returned %d", resp.StatusCode)
	}

	var job jobEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("status response parse: %w", err)
	}
	return &job, nil
}

const (
	msgUnavailable   = "Document conversion service unavailable. Please try uploading an image (JPG/PNG) instead."
	msgTooSlow       = "Document conversion service is taking too long. Please try uploading an image (JPG/PNG) instead."
	msgTimedOut      = "Document conversion timed out. Please try uploading an image (JPG/PNG) instead."
	msgUploadTimeout = "File upload timed out. Please try with a smaller file or upload an image instead."
	msgQuota         = "Document conversion quota exceeded. Please try uploading an image (JPG/PNG) instead."
	msgRateLimited   = "Too many requests. Please wait a moment and try again."
)

func statusError(status int) *Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Status: status, Message: msgUnavailable}
	case http.StatusPaymentRequired:
		return &Error{Status: status, Message: msgQuota}
	case http.StatusTooManyRequests:
		return &Error{Status: status, Message: msgRateLimited}
	default:
		return &Error{Status: status, Message: fmt.Sprintf("Document conversion failed (%d). Please try uploading an image (JPG/PNG) instead.", status)}
	}
}

func detectInputFormat(fileName, mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wordprocessingml") || strings.HasSuffix(fileName, ".docx"):
		return "docx"
	case strings.Contains(mimeType, "msword") || strings.HasSuffix(fileName, ".doc"):
		return "doc"
	default:
		return "pdf"
	}
}
