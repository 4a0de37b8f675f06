package repository

import (
	"errors"
	"sort"
	"sync"

	"linkpulse/internal/entities"
)

var (
	// ErrCodeTaken is returned when a short code is already registered
	ErrCodeTaken = errors.New("short code already taken")
	// ErrLinkNotFound is returned when an operation targets a link that
	// does not (or no longer) exists
	ErrLinkNotFound = errors.New("link not found")
)

// LinkRepository defines the registry operations for links
type LinkRepository interface {
	CreateLink(link *entities.Link) error
	FindByShortCode(code string) *entities.Link
	FindByID(id string) *entities.Link
	ListLinks() []entities.Link
	ToggleActive(id string) bool
	DeleteLink(id string) bool
}

// ClickRepository defines the ledger operations for click history
type ClickRepository interface {
	AppendClick(click *entities.Click) error
	ClicksForLink(linkID string) []entities.Click
	PatchClickGeo(clickID string, geo *entities.GeoInfo)
	UniqueVisitorCount(linkID string) int
}

// MemoryStore holds all links and clicks for the lifetime of the
// process. A single RWMutex guards every map: mutations are mutually
// exclusive, reads copy values out under the read lock so no caller
// ever observes a half-applied patch or a click count that disagrees
// with the ledger.
type MemoryStore struct {
	mu         sync.RWMutex
	links      map[string]*entities.Link    // link id -> link
	codes      map[string]string            // short code -> link id
	clicks     map[string][]*entities.Click // link id -> history, insertion order
	clickIndex map[string]string            // click id -> link id
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:      make(map[string]*entities.Link),
		codes:      make(map[string]string),
		clicks:     make(map[string][]*entities.Click),
		clickIndex: make(map[string]string),
	}
}

// CreateLink registers a link and its empty click history as one unit.
// The short code check runs under the write lock, so two concurrent
// creates with the same code cannot both succeed.
func (s *MemoryStore) CreateLink(link *entities.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.codes[link.ShortCode]; taken {
		return ErrCodeTaken
	}

	stored := *link
	s.links[stored.ID] = &stored
	s.codes[stored.ShortCode] = stored.ID
	s.clicks[stored.ID] = nil
	return nil
}

// FindByShortCode looks a link up by its short code, nil when absent
func (s *MemoryStore) FindByShortCode(code string) *entities.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.codes[code]
	if !ok {
		return nil
	}
	return copyLink(s.links[id])
}

// FindByID looks a link up by its id, nil when absent
func (s *MemoryStore) FindByID(id string) *entities.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyLink(s.links[id])
}

// ListLinks returns all links newest-first. Creation-time ties fall
// back to the id so the order is stable within and across calls.
func (s *MemoryStore) ListLinks() []entities.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Link, 0, len(s.links))
	for _, link := range s.links {
		out = append(out, *link)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ToggleActive flips the active flag, false when the link is unknown
func (s *MemoryStore) ToggleActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return false
	}
	link.IsActive = !link.IsActive
	return true
}

// DeleteLink removes the link and its whole click history atomically.
// A geolocation patch that arrives afterwards finds nothing to patch
// and is dropped; nothing can resurrect the history.
func (s *MemoryStore) DeleteLink(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return false
	}
	for _, click := range s.clicks[id] {
		delete(s.clickIndex, click.ID)
	}
	delete(s.clicks, id)
	delete(s.codes, link.ShortCode)
	delete(s.links, id)
	return true
}

// AppendClick stores a click under its link's history and increments
// that link's click count in the same critical section. The click is
// discarded when the link has vanished in the meantime.
func (s *MemoryStore) AppendClick(click *entities.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[click.LinkID]
	if !ok {
		return ErrLinkNotFound
	}

	stored := *click
	s.clicks[click.LinkID] = append(s.clicks[click.LinkID], &stored)
	s.clickIndex[stored.ID] = click.LinkID
	link.ClickCount++
	return nil
}

// ClicksForLink returns the full history for a link in insertion
// order. The returned slice holds copies; Geo blocks are shared but
// never mutated once set.
func (s *MemoryStore) ClicksForLink(linkID string) []entities.Click {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.clicks[linkID]
	out := make([]entities.Click, len(history))
	for i, click := range history {
		out[i] = *click
	}
	return out
}

// PatchClickGeo attaches a resolved location to a click. The lookup
// runs through the click index under the write lock, so a click (or
// its whole link) deleted between redirect and resolution makes the
// patch a silent no-op.
func (s *MemoryStore) PatchClickGeo(clickID string, geo *entities.GeoInfo) {
	if geo == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	linkID, ok := s.clickIndex[clickID]
	if !ok {
		return
	}
	for _, click := range s.clicks[linkID] {
		if click.ID == clickID {
			if click.Geo == nil {
				g := *geo
				click.Geo = &g
			}
			return
		}
	}
}

// UniqueVisitorCount counts distinct IPs in a link's history
func (s *MemoryStore) UniqueVisitorCount(linkID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, click := range s.clicks[linkID] {
		seen[click.IP] = struct{}{}
	}
	return len(seen)
}

func copyLink(link *entities.Link) *entities.Link {
	if link == nil {
		return nil
	}
	c := *link
	return &c
}
