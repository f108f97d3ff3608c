package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	mu       sync.Mutex
	draft    *Draft
	lastUsed time.Time
}

// Sessions holds the in-progress drafts. Operations on one draft run one at
// a time; different drafts proceed in parallel.
type Sessions struct {
	mu     sync.Mutex
	drafts map[string]*entry
	now    func() time.Time
}

func NewSessions(now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{drafts: make(map[string]*entry), now: now}
}

// Create registers an empty draft and returns its id.
func (s *Sessions) Create() string {
	id := "draft-" + uuid.NewString()

	s.mu.Lock()
	s.drafts[id] = &entry{draft: NewDraft(id), lastUsed: s.now()}
	s.mu.Unlock()

	return id
}

// With runs fn with exclusive access to the draft.
func (s *Sessions) With(id string, fn func(d *Draft) error) error {
	s.mu.Lock()
	e, ok := s.drafts[id]
	s.mu.Unlock()
	if !ok {
		return ErrDraftNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastUsed = s.now()

	return fn(e.draft)
}

func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.drafts[id]
	delete(s.drafts, id)

	return ok
}

// Sweep drops drafts idle for longer than ttl and reports how many went.
func (s *Sessions) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.drafts {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			delete(s.drafts, id)
			n++
		}
		e.mu.Unlock()
	}

	return n
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
