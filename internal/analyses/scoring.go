package analyses

import "math"

// Rubric weights: ATS and content carry most of the grade.
const (
	weightATS     = 0.30
	weightContent = 0.30
	weightFormat  = 0.20
	weightSkills  = 0.20
)

func clampScore(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// OverallScore collapses the breakdown into a single weighted score,
// rounded half away from zero.
func OverallScore(scores ScoreBreakdown) int {
	weighted := float64(scores.ATS)*weightATS +
		float64(scores.Content)*weightContent +
		float64(scores.Format)*weightFormat +
		float64(scores.Skills)*weightSkills
	return int(math.Round(weighted))
}

// GradeFor maps an overall score to a letter grade.
func GradeFor(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// RankAmong positions overall against previously stored scores. The new
// resume is counted in the total; position is one past the number of
// strictly better scores. With no prior scores the resume ranks first at
// the 100th percentile.
func RankAmong(prior []int, overall int) Ranking {
	if len(prior) == 0 {
		return Ranking{Position: 1, Total: 1, Percentile: 100}
	}
	better := 0
	for _, s := range prior {
		if s > overall {
			better++
		}
	}
	position := better + 1
	total := len(prior) + 1
	percentile := int(math.Floor(float64(total-position) / float64(total) * 100))
	if percentile < 0 {
		percentile = 0
	}
	if percentile > 100 {
		percentile = 100
	}
	return Ranking{Position: position, Total: total, Percentile: percentile}
}

// NeutralRanking is used when prior scores cannot be read.
func NeutralRanking() Ranking {
	return Ranking{Position: 1, Total: 1, Percentile: 100}
}
