package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"resume-scan-api/internal/llm"
	"resume-scan-api/internal/shared/telemetry"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions: one vision call
// for OCR transcription and one JSON-mode call for scoring.
type Client struct {
	apiKey        string
	visionModel   string
	analysisModel string
	apiURL        string
	httpClient    *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, visionModel, analysisModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(visionModel) == "" || strings.TrimSpace(analysisModel) == "" {
		return nil, fmt.Errorf("VISION_MODEL and ANALYSIS_MODEL are required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:        apiKey,
		visionModel:   visionModel,
		analysisModel: analysisModel,
		apiURL:        defaultAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// WithBaseURL overrides the API endpoint, primarily for tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.apiURL = url
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ExtractText sends every page image in one request and returns the raw
// transcription. An empty transcription is not an error here.
func (c *Client) ExtractText(ctx context.Context, pages llm.PageImageSet) (string, error) {
	if len(pages) == 0 {
		return "", fmt.Errorf("gpt vision failed: no page images")
	}

	parts := make([]contentPart, 0, len(pages)+1)
	parts = append(parts, contentPart{Type: "text", Text: ocrUserPrompt})
	for _, page := range pages {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageRef{URL: page.URL, Detail: "high"},
		})
	}

	temp := float32(0.1)
	req := chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{Role: "system", Content: ocrSystemPrompt},
			{Role: "user", Content: parts},
		},
		MaxTokens:   4000,
		Temperature: &temp,
	}

	content, usage, err := c.complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("gpt vision failed: %w", err)
	}
	logUsage("ocr", c.visionModel, len(pages), usage)
	return content, nil
}

// AnalyzeResume runs the rubric prompt in JSON mode and returns whatever the
// model produced; decoding and fallback live with the caller.
func (c *Client) AnalyzeResume(ctx context.Context, resumeText string) (json.RawMessage, error) {
	temp := float32(0.3)
	req := chatRequest{
		Model: c.analysisModel,
		Messages: []chatMessage{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: "Analyze this resume:\n\n" + resumeText},
		},
		MaxTokens:      1500,
		Temperature:    &temp,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	content, usage, err := c.complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("resume analysis failed: %w", err)
	}
	logUsage("analysis", c.analysisModel, 0, usage)
	return json.RawMessage(content), nil
}

func (c *Client) complete(ctx context.Context, reqBody chatRequest) (string, *chatResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, fmt.Errorf("openai http status %d: %s", resp.StatusCode, resp.Status)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", nil, fmt.Errorf("openai response missing choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), &parsed, nil
}

func logUsage(call, model string, pages int, resp *chatResponse) {
	fields := map[string]any{
		"call":  call,
		"model": model,
	}
	if pages > 0 {
		fields["pages"] = pages
	}
	if resp != nil && resp.Usage != nil {
		fields["prompt_tokens"] = resp.Usage.PromptTokens
		fields["completion_tokens"] = resp.Usage.CompletionTokens
		fields["total_tokens"] = resp.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Client = (*Client)(nil)
