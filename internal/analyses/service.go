package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-scan-api/internal/convert"
	"resume-scan-api/internal/extract"
	"resume-scan-api/internal/llm"
	"resume-scan-api/internal/sessions"
	"resume-scan-api/internal/shared/metrics"
	"resume-scan-api/internal/shared/storage/object"
	"resume-scan-api/internal/shared/telemetry"
	"resume-scan-api/internal/shared/util"
)

const storedTextLimit = 5000

// Converter turns a document into one JPEG page image URL per page.
type Converter interface {
	ConvertToJPEG(ctx context.Context, fileName, mimeType string, data []byte) ([]string, error)
}

// Upload is one resume submission.
type Upload struct {
	FileName      string
	MimeType      string
	Size          int64
	Data          []byte
	AnonSessionID string
}

// Service runs the analysis pipeline: validate, normalize to page images,
// extract text, score, rank, persist. Stages run strictly in sequence; each
// stage's output feeds the next.
type Service struct {
	Convert  Converter
	LLM      llm.Client
	Sessions sessions.Repo
	// Archive receives a copy of each accepted upload. Nil disables archival.
	Archive object.ObjectStore
	Channel string
	// LocalTextExtract reads the embedded text layer of PDFs and DOCX files
	// directly, skipping conversion and OCR when the document has one.
	LocalTextExtract bool
}

// Analyze runs the full pipeline for one upload.
func (s *Service) Analyze(ctx context.Context, up Upload) (AnalysisResult, error) {
	if err := ValidateUpload(up.MimeType, up.Size); err != nil {
		return AnalysisResult{}, err
	}

	analysisID := uuid.NewString()
	started := time.Now()
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.start", map[string]any{
		"analysis_id": analysisID,
		"file_name":   up.FileName,
		"size_bytes":  up.Size,
		"mime_type":   up.MimeType,
	})

	result, err := s.run(ctx, analysisID, up)
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis.failed", map[string]any{
			"analysis_id": analysisID,
			"err":         err.Error(),
		})
		return AnalysisResult{}, err
	}

	metrics.IncAnalysisCompleted()
	metrics.ObservePipelineDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("analysis.completed", map[string]any{
		"analysis_id":   analysisID,
		"overall_score": result.OverallScore,
		"grade":         result.Grade,
		"duration_ms":   time.Since(started).Milliseconds(),
	})
	return result, nil
}

func (s *Service) run(ctx context.Context, analysisID string, up Upload) (AnalysisResult, error) {
	extractedText, err := s.extractText(ctx, up)
	if err != nil {
		return AnalysisResult{}, err
	}
	if extractedText == "" {
		return AnalysisResult{}, &PipelineError{Message: msgEmptyExtraction}
	}
	telemetry.Debug("analysis.text_ready", map[string]any{
		"analysis_id": analysisID,
		"chars":       len(extractedText),
	})

	raw, err := s.LLM.AnalyzeResume(ctx, extractedText)
	if err != nil {
		return AnalysisResult{}, &PipelineError{Message: err.Error(), Err: err}
	}

	result, parsed := DecodeModelOutput(raw)
	if !parsed {
		// The fallback carries its own fixed ranking; skip enrichment so the
		// response stays constant regardless of stored data.
		metrics.IncAnalysisFallback()
	} else {
		result.Ranking = s.rank(ctx, result.OverallScore)
	}

	s.saveSession(ctx, up, result, extractedText)
	s.archive(ctx, analysisID, up, extractedText)
	return result, nil
}

// extractText produces the resume's plain text, preferring the embedded text
// layer when enabled and falling back to the conversion + OCR path.
func (s *Service) extractText(ctx context.Context, up Upload) (string, error) {
	if s.LocalTextExtract && !isImage(up.MimeType) {
		text, err := extract.TextFromBytes(ctx, up.Data, up.MimeType, up.FileName)
		if err == nil && text != "" {
			telemetry.Info("analysis.local_text", map[string]any{
				"file_name": up.FileName,
				"chars":     len(text),
			})
			return text, nil
		}
		if err != nil && !errors.Is(err, extract.ErrNoTextLayer) {
			telemetry.Debug("analysis.local_text_skipped", map[string]any{
				"file_name": up.FileName,
				"err":       err.Error(),
			})
		}
	}

	pages, err := s.normalizePages(ctx, up)
	if err != nil {
		return "", err
	}

	text, err := s.LLM.ExtractText(ctx, pages)
	if err != nil {
		return "", &PipelineError{Message: err.Error(), Err: err}
	}
	return strings.TrimSpace(text), nil
}

// normalizePages converts the upload into page images. Images that fail
// conversion pass through raw; documents that fail conversion are terminal.
func (s *Service) normalizePages(ctx context.Context, up Upload) (llm.PageImageSet, error) {
	if s.Convert == nil {
		if isImage(up.MimeType) {
			return llm.PageImageSet{llm.DataURI(up.MimeType, up.Data)}, nil
		}
		return nil, &PipelineError{Message: msgUnprocessableDoc, Err: errors.New("conversion client not configured")}
	}

	convStart := time.Now()
	urls, err := s.Convert.ConvertToJPEG(ctx, up.FileName, up.MimeType, up.Data)
	metrics.ObserveConversionDurationMs(float64(time.Since(convStart).Milliseconds()))
	if err != nil {
		if isImage(up.MimeType) {
			telemetry.Info("analysis.conversion_fallback", map[string]any{
				"file_name": up.FileName,
				"err":       err.Error(),
			})
			metrics.IncConversionFallback()
			return llm.PageImageSet{llm.DataURI(up.MimeType, up.Data)}, nil
		}
		var convErr *convert.Error
		if errors.As(err, &convErr) {
			return nil, &PipelineError{Message: convErr.Message, Err: err}
		}
		return nil, &PipelineError{Message: msgUnprocessableDoc, Err: err}
	}

	pages := make(llm.PageImageSet, 0, len(urls))
	for _, u := range urls {
		pages = append(pages, llm.PageImage{URL: u})
	}
	return pages, nil
}

func (s *Service) rank(ctx context.Context, overall int) Ranking {
	prior, err := s.Sessions.ListScores(ctx, s.Channel)
	if err != nil {
		telemetry.Error("analysis.ranking_read_failed", map[string]any{"err": err.Error()})
		return NeutralRanking()
	}
	return RankAmong(prior, overall)
}

// saveSession upserts the session row. Persistence failures never fail the
// request; the analysis has already been produced.
func (s *Service) saveSession(ctx context.Context, up Upload, result AnalysisResult, extractedText string) {
	if up.AnonSessionID == "" {
		return
	}

	sessionID, err := util.SanitizeSessionKey(up.AnonSessionID)
	if err != nil {
		telemetry.Error("analysis.session_id_rejected", map[string]any{"err": err.Error()})
		return
	}

	email := ""
	if result.ExtractedEmail != nil {
		email = *result.ExtractedEmail
	}
	now := time.Now().UTC()
	session := sessions.Session{
		AnonSessionID: sessionID,
		Channel:       s.Channel,
		Email:         email,
		Payload: map[string]any{
			"fileName":      up.FileName,
			"fileSize":      up.Size,
			"analysis":      result,
			"extractedText": truncate(extractedText, storedTextLimit),
			"processedAt":   now.Format(time.RFC3339),
		},
		UpdatedAt: now,
	}
	if err := s.Sessions.Upsert(ctx, session); err != nil {
		telemetry.Error("analysis.session_save_failed", map[string]any{
			"anon_session_id": session.AnonSessionID,
			"err":             err.Error(),
		})
		return
	}
	telemetry.Info("analysis.session_saved", map[string]any{
		"anon_session_id": session.AnonSessionID,
	})
}

// archive stores the raw upload and the extracted text under the session key,
// falling back to the analysis ID for anonymous one-off requests. Failures are
// logged and swallowed like the session upsert.
func (s *Service) archive(ctx context.Context, analysisID string, up Upload, extractedText string) {
	if s.Archive == nil {
		return
	}

	keyBase := analysisID
	if up.AnonSessionID != "" {
		if sessionKey, err := util.SanitizeSessionKey(up.AnonSessionID); err == nil {
			keyBase = sessionKey
		}
	}
	name, err := util.SanitizeFileName(up.FileName)
	if err != nil {
		name = "resume"
	}

	uploadKey := fmt.Sprintf("resumes/%s/%s", keyBase, name)
	if _, err := s.Archive.SaveWithKey(ctx, uploadKey, up.MimeType, bytes.NewReader(up.Data)); err != nil {
		telemetry.Error("analysis.archive_failed", map[string]any{
			"key": uploadKey,
			"err": err.Error(),
		})
	}

	textKey := fmt.Sprintf("resumes/%s/extracted.txt", keyBase)
	if _, err := s.Archive.SaveWithKey(ctx, textKey, "text/plain; charset=utf-8", strings.NewReader(extractedText)); err != nil {
		telemetry.Error("analysis.archive_failed", map[string]any{
			"key": textKey,
			"err": err.Error(),
		})
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
