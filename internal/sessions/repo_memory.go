package sessions

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryRepo implements Repo in process memory for dev and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryRepo creates an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sessions: make(map[string]Session)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.AnonSessionID] = session
	return nil
}

func (r *MemoryRepo) ListScores(ctx context.Context, channel string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var scores []int
	for _, session := range r.sessions {
		if session.Channel != channel {
			continue
		}
		if session.Payload == nil {
			continue
		}
		if _, ok := session.Payload["analysis"]; !ok {
			continue
		}
		raw, err := json.Marshal(session.Payload)
		if err != nil {
			continue
		}
		if score, ok := scoreFromPayload(raw); ok {
			scores = append(scores, score)
		}
	}
	return scores, nil
}

var _ Repo = (*MemoryRepo)(nil)
