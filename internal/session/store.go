package session

import (
	"context"
	"sync"
	"time"
)

// Session is the per-user state of an in-progress workflow. Data holds only
// strings so both backends share one serializable representation.
type Session struct {
	State string            `json:"state"`
	Data  map[string]string `json:"data"`
}

// Store keeps at most one active session per user. Starting a new workflow
// overwrites whatever was there (last-writer-wins).
type Store interface {
	Set(ctx context.Context, userID int64, state string, data map[string]string) error
	Get(ctx context.Context, userID int64) (Session, bool, error)
	Merge(ctx context.Context, userID int64, partial map[string]string) error
	Clear(ctx context.Context, userID int64) error
}

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// MemoryStore is the in-process backend. Sessions expire lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
}

// NewMemoryStore creates an in-process store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryStore) Set(_ context.Context, userID int64, state string, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = memoryEntry{
		sess:      Session{State: state, Data: copyData(data)},
		expiresAt: s.deadline(),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID]
	if !ok {
		return Session{}, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.entries, userID)
		return Session{}, false, nil
	}
	return Session{State: entry.sess.State, Data: copyData(entry.sess.Data)}, true, nil
}

func (s *MemoryStore) Merge(_ context.Context, userID int64, partial map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID]
	if !ok {
		return nil
	}
	if entry.sess.Data == nil {
		entry.sess.Data = make(map[string]string, len(partial))
	}
	for k, v := range partial {
		entry.sess.Data[k] = v
	}
	entry.expiresAt = s.deadline()
	s.entries[userID] = entry
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

func (s *MemoryStore) deadline() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.ttl)
}

func copyData(data map[string]string) map[string]string {
	if data == nil {
		return nil
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
