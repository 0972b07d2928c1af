package memory

import (
	"context"
	"sync"

	"github.com/jobcoach/coach-api/internal/domain"
)

// Archive keeps turns and job descriptions in process memory. The default
// backend for local runs and tests.
type Archive struct {
	mu    sync.RWMutex
	turns map[domain.SessionID][]domain.Turn
	jobs  map[domain.SessionID]jobRecord
}

type jobRecord struct {
	title string
	text  string
}

func NewArchive() *Archive {
	return &Archive{
		turns: make(map[domain.SessionID][]domain.Turn),
		jobs:  make(map[domain.SessionID]jobRecord),
	}
}

func (a *Archive) SaveTurn(_ context.Context, sessionID domain.SessionID, turn domain.Turn) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.turns[sessionID] = append(a.turns[sessionID], turn)
	return nil
}

func (a *Archive) SaveJobDescription(_ context.Context, sessionID domain.SessionID, title, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.jobs[sessionID] = jobRecord{title: title, text: text}
	return nil
}

func (a *Archive) History(_ context.Context, sessionID domain.SessionID) ([]domain.Turn, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return append([]domain.Turn(nil), a.turns[sessionID]...), nil
}
