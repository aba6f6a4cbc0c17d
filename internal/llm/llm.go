package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
)

// PageImage is one resume page ready for vision OCR: either a remote URL from
// the conversion service or an inline base64 data URI.
type PageImage struct {
	URL string
}

// PageImageSet is an ordered set of page images, one entry per resume page.
type PageImageSet []PageImage

// DataURI wraps raw image bytes as an inline page image.
func DataURI(mimeType string, data []byte) PageImage {
	return PageImage{URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)}
}

// Client abstracts the vision/LLM provider for the analysis pipeline.
type Client interface {
	// ExtractText transcribes all page images in a single call. The result may
	// be empty; callers decide whether that is an error.
	ExtractText(ctx context.Context, pages PageImageSet) (string, error)
	// AnalyzeResume scores extracted text against the rubric and returns the
	// model's raw JSON output.
	AnalyzeResume(ctx context.Context, resumeText string) (json.RawMessage, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

func (PlaceholderClient) ExtractText(ctx context.Context, pages PageImageSet) (string, error) {
	_ = ctx
	_ = pages
	return "", ErrNotConfigured
}

func (PlaceholderClient) AnalyzeResume(ctx context.Context, resumeText string) (json.RawMessage, error) {
	_ = ctx
	_ = resumeText
	return nil, ErrNotConfigured
}
