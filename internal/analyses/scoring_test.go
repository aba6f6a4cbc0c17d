package analyses

import "testing"

func TestOverallScoreWeighting(t *testing.T) {
	cases := []struct {
		name   string
		scores ScoreBreakdown
		want   int
	}{
		{"uniform", ScoreBreakdown{ATS: 80, Content: 80, Format: 80, Skills: 80}, 80},
		{"weighted", ScoreBreakdown{ATS: 100, Content: 0, Format: 0, Skills: 0}, 30},
		{"mixed", ScoreBreakdown{ATS: 90, Content: 70, Format: 60, Skills: 50}, 70},
		{"rounds up", ScoreBreakdown{ATS: 85, Content: 85, Format: 84, Skills: 84}, 85},
		{"zero", ScoreBreakdown{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OverallScore(tc.scores); got != tc.want {
				t.Fatalf("OverallScore(%+v) = %d, want %d", tc.scores, got, tc.want)
			}
		})
	}
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "A"}, {90, "A"},
		{89, "B"}, {80, "B"},
		{79, "C"}, {70, "C"},
		{69, "D"}, {60, "D"},
		{59, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		if got := GradeFor(tc.score); got != tc.want {
			t.Fatalf("GradeFor(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestRankAmong(t *testing.T) {
	prior := []int{90, 85, 70, 60}

	r := RankAmong(prior, 80)
	if r.Position != 3 {
		t.Fatalf("expected position 3, got %d", r.Position)
	}
	if r.Total != 5 {
		t.Fatalf("expected total 5, got %d", r.Total)
	}
	// floor((5-3)/5 * 100) = 40
	if r.Percentile != 40 {
		t.Fatalf("expected percentile 40, got %d", r.Percentile)
	}
}

func TestRankAmongTopScore(t *testing.T) {
	r := RankAmong([]int{50, 60, 70}, 95)
	if r.Position != 1 {
		t.Fatalf("expected position 1, got %d", r.Position)
	}
	if r.Total != 4 {
		t.Fatalf("expected total 4, got %d", r.Total)
	}
	if r.Percentile != 75 {
		t.Fatalf("expected percentile 75, got %d", r.Percentile)
	}
}

func TestRankAmongLowestScore(t *testing.T) {
	r := RankAmong([]int{80, 90}, 10)
	if r.Position != 3 || r.Total != 3 {
		t.Fatalf("expected last position 3/3, got %d/%d", r.Position, r.Total)
	}
	if r.Percentile != 0 {
		t.Fatalf("expected percentile 0, got %d", r.Percentile)
	}
}

func TestRankAmongNoPriorScores(t *testing.T) {
	r := RankAmong(nil, 75)
	if r.Position != 1 || r.Total != 1 || r.Percentile != 100 {
		t.Fatalf("expected first resume to rank 1/1 at 100th percentile, got %+v", r)
	}
}

func TestRankAmongTiesDoNotOutrank(t *testing.T) {
	// Equal scores are not "better"; only strictly higher scores push the
	// position down.
	r := RankAmong([]int{75, 75, 75}, 75)
	if r.Position != 1 {
		t.Fatalf("expected position 1 with all ties, got %d", r.Position)
	}
}

func TestClampScore(t *testing.T) {
	if got := clampScore(-5); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := clampScore(150); got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
	if got := clampScore(42); got != 42 {
		t.Fatalf("expected 42 unchanged, got %d", got)
	}
}
