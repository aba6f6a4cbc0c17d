package analyses

// ScoreBreakdown holds the four rubric dimensions, each 0-100.
type ScoreBreakdown struct {
	ATS     int `json:"ats"`
	Content int `json:"content"`
	Format  int `json:"format"`
	Skills  int `json:"skills"`
}

// ScoreReasons carries one short explanation per rubric dimension.
type ScoreReasons struct {
	ATS     string `json:"ats"`
	Content string `json:"content"`
	Format  string `json:"format"`
	Skills  string `json:"skills"`
}

// Ranking places the resume among previously analyzed resumes in the channel.
type Ranking struct {
	Position   int `json:"position"`
	Total      int `json:"total"`
	Percentile int `json:"percentile"`
}

// QuickWin is one actionable improvement with an estimated score impact.
type QuickWin struct {
	Improvement string   `json:"improvement"`
	Keywords    []string `json:"keywords,omitempty"`
	Points      int      `json:"points"`
	Explanation string   `json:"explanation"`
}

// AnalysisResult is the full analysis returned to the caller and stored in the
// session payload. Score duplicates OverallScore for older clients.
type AnalysisResult struct {
	Score           int            `json:"score"`
	OverallScore    int            `json:"overallScore"`
	Scores          ScoreBreakdown `json:"scores"`
	ScoreReasons    ScoreReasons   `json:"scoreReasons"`
	Ranking         Ranking        `json:"ranking"`
	QuickWins       []QuickWin     `json:"quickWins"`
	Grade           string         `json:"grade"`
	Summary         string         `json:"summary"`
	Highlights      []string       `json:"highlights"`
	Improvements    []string       `json:"improvements"`
	ExtractedName   *string        `json:"extractedName"`
	ExtractedEmail  *string        `json:"extractedEmail"`
	ExtractedTitle  *string        `json:"extractedTitle"`
	SkillsFound     []string       `json:"skillsFound"`
	ExperienceYears *int           `json:"experienceYears"`
}
