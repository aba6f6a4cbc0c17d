package sessions

import "context"

// Repo defines persistence operations for anonymous sessions.
type Repo interface {
	// Upsert inserts or replaces the session row keyed by AnonSessionID.
	Upsert(ctx context.Context, session Session) error
	// ListScores returns the overall score of every session in the channel
	// that has a completed analysis. Reads all rows; acceptable at funnel
	// volume, revisit before the table grows past that.
	ListScores(ctx context.Context, channel string) ([]int, error)
}
