package coaching

import (
	"sync"

	"github.com/jobcoach/coach-api/internal/domain"
)

// Registry maps session ids to their live state. Sessions are created
// lazily on first reference; two concurrent first references to the same id
// observe the same object. Acquire serializes all read-modify-write
// sequences per session while leaving distinct sessions independent.
type Registry struct {
	mu           sync.Mutex
	sessions     map[domain.SessionID]*sessionEntry
	maxQuestions int
}

type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

func NewRegistry(maxQuestions int) *Registry {
	return &Registry{
		sessions:     make(map[domain.SessionID]*sessionEntry),
		maxQuestions: maxQuestions,
	}
}

// Acquire returns the session state for id, creating it if unseen, with its
// per-session lock held. created reports whether this call created the
// state. The caller must invoke release when done mutating.
func (r *Registry) Acquire(id domain.SessionID) (session *domain.Session, created bool, release func()) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if !ok {
		entry = &sessionEntry{session: domain.NewSession(id, r.maxQuestions)}
		r.sessions[id] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	return entry.session, !ok, entry.mu.Unlock
}

// Snapshot returns a deep copy of the session state for id, taken under the
// per-session lock. ok reports whether the session is resident.
func (r *Registry) Snapshot(id domain.SessionID) (session domain.Session, ok bool) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return domain.Session{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	copied := *entry.session
	copied.History = append([]domain.Turn(nil), entry.session.History...)
	copied.SummaryPoints = append([]string(nil), entry.session.SummaryPoints...)
	return copied, true
}

// Len reports how many sessions are resident.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
