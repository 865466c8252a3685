package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/findajob/jobboard/internal/models"
)

// PreviewStore keeps extraction previews between the preview and confirm
// steps. Entries are scoped to the user that created them and expire.
type PreviewStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]previewEntry
}

type previewEntry struct {
	userID    uint
	preview   models.ListingPreview
	expiresAt time.Time
}

func NewPreviewStore(ttl time.Duration) *PreviewStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PreviewStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]previewEntry),
	}
}

// Put stores the preview under a fresh token and returns it with the token set.
func (s *PreviewStore) Put(userID uint, preview models.ListingPreview) models.ListingPreview {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	preview.Token = uuid.NewString()
	s.entries[preview.Token] = previewEntry{
		userID:    userID,
		preview:   preview,
		expiresAt: s.now().Add(s.ttl),
	}
	return preview
}

// Get returns the preview if it exists, has not expired and belongs to userID.
func (s *PreviewStore) Get(userID uint, token string) (models.ListingPreview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok || entry.userID != userID {
		return models.ListingPreview{}, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, token)
		return models.ListingPreview{}, false
	}
	return entry.preview, true
}

// Take removes the preview and returns it with a restore func that puts it
// back under its original expiry. Concurrent callers with one token get the
// preview at most once.
func (s *PreviewStore) Take(userID uint, token string) (models.ListingPreview, func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok || entry.userID != userID {
		return models.ListingPreview{}, nil, false
	}
	delete(s.entries, token)
	if !s.now().Before(entry.expiresAt) {
		return models.ListingPreview{}, nil, false
	}

	restore := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, taken := s.entries[token]; !taken && s.now().Before(entry.expiresAt) {
			s.entries[token] = entry
		}
	}
	return entry.preview, restore, true
}

func (s *PreviewStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

func (s *PreviewStore) pruneLocked() {
	now := s.now()
	for token, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, token)
		}
	}
}
