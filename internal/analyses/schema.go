package analyses

import (
	"encoding/json"

	"resume-scan-api/internal/shared/telemetry"
)

// modelOutput mirrors the JSON shape the analysis model is prompted to emit.
// Every field is optional; the decoder fills gaps with defaults so a sparse
// but valid response still produces a complete result.
type modelOutput struct {
	Scores          *ScoreBreakdown `json:"scores"`
	ScoreReasons    *ScoreReasons   `json:"scoreReasons"`
	QuickWins       []QuickWin      `json:"quickWins"`
	Summary         string          `json:"summary"`
	Highlights      []string        `json:"highlights"`
	Improvements    []string        `json:"improvements"`
	ExtractedName   *string         `json:"extractedName"`
	ExtractedEmail  *string         `json:"extractedEmail"`
	ExtractedTitle  *string         `json:"extractedTitle"`
	SkillsFound     []string        `json:"skillsFound"`
	ExperienceYears *int            `json:"experienceYears"`
}

// DecodeModelOutput turns the raw model JSON into an AnalysisResult. A
// response that is not valid JSON yields FallbackResult and ok=false; a valid
// response with missing fields is completed with neutral defaults. Ranking is
// left zero for the caller to fill.
func DecodeModelOutput(raw []byte) (AnalysisResult, bool) {
	var out modelOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		telemetry.Error("analysis.parse_failed", map[string]any{
			"err":     err.Error(),
			"preview": preview(raw, 500),
		})
		return FallbackResult(), false
	}

	scores := ScoreBreakdown{ATS: 65, Content: 65, Format: 65, Skills: 65}
	if out.Scores != nil {
		scores = *out.Scores
	}
	overall := OverallScore(scores)
	scores.ATS = clampScore(scores.ATS)
	scores.Content = clampScore(scores.Content)
	scores.Format = clampScore(scores.Format)
	scores.Skills = clampScore(scores.Skills)

	reasons := ScoreReasons{
		ATS:     "ATS analysis complete.",
		Content: "Content analysis complete.",
		Format:  "Format analysis complete.",
		Skills:  "Skills analysis complete.",
	}
	if out.ScoreReasons != nil {
		reasons = *out.ScoreReasons
	}

	summary := out.Summary
	if summary == "" {
		summary = "Resume analysis complete."
	}

	result := AnalysisResult{
		Score:           overall,
		OverallScore:    overall,
		Scores:          scores,
		ScoreReasons:    reasons,
		QuickWins:       emptyIfNil(out.QuickWins),
		Grade:           GradeFor(overall),
		Summary:         summary,
		Highlights:      emptyIfNil(out.Highlights),
		Improvements:    emptyIfNil(out.Improvements),
		ExtractedName:   out.ExtractedName,
		ExtractedEmail:  out.ExtractedEmail,
		ExtractedTitle:  out.ExtractedTitle,
		SkillsFound:     emptyIfNil(out.SkillsFound),
		ExperienceYears: out.ExperienceYears,
	}
	return result, true
}

// FallbackResult is the fixed analysis served when the model's output cannot
// be parsed. It is deliberately constant so the caller's behavior on bad
// model output is predictable end to end.
func FallbackResult() AnalysisResult {
	return AnalysisResult{
		Score:        65,
		OverallScore: 65,
		Scores:       ScoreBreakdown{ATS: 65, Content: 65, Format: 65, Skills: 65},
		ScoreReasons: ScoreReasons{
			ATS:     "Unable to fully analyze ATS compatibility. Sign up for detailed insights.",
			Content: "Unable to fully analyze content quality. Sign up for detailed insights.",
			Format:  "Unable to fully analyze formatting. Sign up for detailed insights.",
			Skills:  "Unable to fully analyze skills match. Sign up for detailed insights.",
		},
		Ranking: Ranking{Position: 1, Total: 1, Percentile: 50},
		QuickWins: []QuickWin{
			{
				Improvement: "Sign up for personalized recommendations",
				Points:      15,
				Explanation: "Get AI-powered suggestions tailored to your resume and target roles.",
			},
		},
		Grade:        "C",
		Summary:      "Resume processed successfully. Sign up for comprehensive analysis.",
		Highlights:   []string{"Resume uploaded successfully"},
		Improvements: []string{"Sign up for detailed analysis"},
		SkillsFound:  []string{},
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func preview(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit])
}
