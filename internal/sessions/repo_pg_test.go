package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	session := Session{
		AnonSessionID: "sess-1",
		Channel:       "marketing-resume-analyzer",
		Email:         "casey@example.com",
		Payload: map[string]any{
			"fileName": "resume.pdf",
		},
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO anonymous_sessions").
		WithArgs(
			session.AnonSessionID,
			session.Channel,
			session.Email,
			sqlmock.AnyArg(), // payload json
			session.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Upsert(context.Background(), session); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertNullsEmptyEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	session := Session{
		AnonSessionID: "sess-1",
		Channel:       "marketing-resume-analyzer",
		Payload:       map[string]any{},
		UpdatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO anonymous_sessions").
		WithArgs(
			session.AnonSessionID,
			session.Channel,
			nil,
			sqlmock.AnyArg(),
			session.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Upsert(context.Background(), session); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListScores(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	rows := sqlmock.NewRows([]string{"payload"}).
		AddRow([]byte(`{"analysis": {"overallScore": 82}}`)).
		AddRow([]byte(`{"analysis": {"score": 67}}`)).
		AddRow([]byte(`{"analysis": {"summary": "no score stored"}}`)).
		AddRow([]byte(`not json`))

	mock.ExpectQuery("SELECT payload").
		WithArgs("marketing-resume-analyzer").
		WillReturnRows(rows)

	scores, err := repo.ListScores(context.Background(), "marketing-resume-analyzer")
	if err != nil {
		t.Fatalf("ListScores: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d: %v", len(scores), scores)
	}
	if scores[0] != 82 || scores[1] != 67 {
		t.Fatalf("unexpected scores %v", scores)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMemoryRepoRoundTrip(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	sessionWithScore := Session{
		AnonSessionID: "sess-1",
		Channel:       "marketing-resume-analyzer",
		Payload: map[string]any{
			"analysis": map[string]any{"overallScore": 74},
		},
	}
	sessionOtherChannel := Session{
		AnonSessionID: "sess-2",
		Channel:       "other-funnel",
		Payload: map[string]any{
			"analysis": map[string]any{"overallScore": 99},
		},
	}
	sessionNoAnalysis := Session{
		AnonSessionID: "sess-3",
		Channel:       "marketing-resume-analyzer",
		Payload:       map[string]any{"fileName": "resume.pdf"},
	}

	for _, s := range []Session{sessionWithScore, sessionOtherChannel, sessionNoAnalysis} {
		if err := repo.Upsert(ctx, s); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	scores, err := repo.ListScores(ctx, "marketing-resume-analyzer")
	if err != nil {
		t.Fatalf("ListScores: %v", err)
	}
	if len(scores) != 1 || scores[0] != 74 {
		t.Fatalf("expected [74], got %v", scores)
	}
}

func TestMemoryRepoUpsertReplaces(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	first := Session{
		AnonSessionID: "sess-1",
		Channel:       "marketing-resume-analyzer",
		Payload:       map[string]any{"analysis": map[string]any{"overallScore": 50}},
	}
	second := first
	second.Payload = map[string]any{"analysis": map[string]any{"overallScore": 88}}

	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	scores, err := repo.ListScores(ctx, "marketing-resume-analyzer")
	if err != nil {
		t.Fatalf("ListScores: %v", err)
	}
	if len(scores) != 1 || scores[0] != 88 {
		t.Fatalf("expected replaced score [88], got %v", scores)
	}
}
