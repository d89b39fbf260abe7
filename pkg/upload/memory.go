package upload

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore records upload metadata in memory and discards file bytes.
type MemoryStore struct {
	maxSize int64
	ttl     time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	files map[string]*File
}

// NewMemoryStore creates a new MemoryStore.
//
// Parameters:
//   - maxSize: Maximum file size in bytes (0 = no limit)
//   - ttl: How long a temp ID stays valid (0 = until claimed)
func NewMemoryStore(maxSize int64, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		files:   make(map[string]*File),
	}
}

// Save drains r and records the file.
func (s *MemoryStore) Save(filename, contentType string, r io.Reader) (*File, error) {
	var reader io.Reader = r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1) // +1 to detect overflow
	}

	written, err := io.Copy(io.Discard, reader)
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && written > s.maxSize {
		return nil, ErrTooLarge
	}

	f := &File{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		ReceivedAt:  s.now(),
	}

	s.mu.Lock()
	s.files[f.ID] = f
	s.mu.Unlock()

	copied := *f
	return &copied, nil
}

// Lookup returns the file recorded under tempID.
func (s *MemoryStore) Lookup(tempID string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(tempID)
}

// Claim returns the file recorded under tempID and removes it.
func (s *MemoryStore) Claim(tempID string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.lookupLocked(tempID)
	if err != nil {
		return nil, err
	}
	delete(s.files, tempID)
	return f, nil
}

func (s *MemoryStore) lookupLocked(tempID string) (*File, error) {
	f, ok := s.files[tempID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.ttl > 0 && s.now().Sub(f.ReceivedAt) > s.ttl {
		delete(s.files, tempID)
		return nil, ErrExpired
	}
	copied := *f
	return &copied, nil
}

// Cleanup removes files older than maxAge.
func (s *MemoryStore) Cleanup(maxAge time.Duration) error {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	for tempID, f := range s.files {
		if f.ReceivedAt.Before(cutoff) {
			delete(s.files, tempID)
		}
	}
	return nil
}

// Len returns the number of recorded files.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Run calls Cleanup every interval until ctx is done. Without a TTL it
// returns immediately.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup(s.ttl)
		}
	}
}
