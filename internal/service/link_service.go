package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkpulse/internal/cache"
	"linkpulse/internal/entities"
	"linkpulse/internal/enrichment"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"
)

var (
	// ErrDuplicateCode means the requested custom short code is taken
	ErrDuplicateCode = errors.New("short code already exists")
	// ErrNotFound means the link does not exist
	ErrNotFound = errors.New("link not found")
	// ErrLinkInactive means the link exists but redirects are switched off
	ErrLinkInactive = errors.New("link is inactive")
	// ErrInvalidCode means the custom short code has a bad shape or is reserved
	ErrInvalidCode = errors.New("invalid short code")
)

const (
	generatedCodeLength = 6
	codeAlphabet        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Reserved short codes that cannot be used
var reservedCodes = map[string]bool{
	"api":       true,
	"health":    true,
	"dashboard": true,
	"qrcode":    true,
	"links":     true,
	"link":      true,
	"analytics": true,
	"shorten":   true,
	"admin":     true,
	"www":       true,
}

var customCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// LinkService defines the interface for link business logic
type LinkService interface {
	CreateShortLink(req *models.CreateLinkRequest, baseURL string) (*models.CreateLinkResponse, error)
	ResolveRedirect(shortCode, ip, userAgent, referer string) (string, error)
	GetLink(id string) (*entities.Link, error)
	GetLinkByCode(code string) (*entities.Link, error)
	ListLinks() []entities.Link
	ToggleLink(id string) error
	DeleteLink(id string) error
}

type linkService struct {
	links    repository.LinkRepository
	clicks   repository.ClickRepository
	cache    cache.Cache
	enricher *enrichment.Enricher
	log      *zap.Logger
}

// NewLinkService creates a new link service. cacheClient may be nil;
// the service then works straight against the store.
func NewLinkService(links repository.LinkRepository, clicks repository.ClickRepository, cacheClient cache.Cache, enricher *enrichment.Enricher, log *zap.Logger) LinkService {
	return &linkService{
		links:    links,
		clicks:   clicks,
		cache:    cacheClient,
		enricher: enricher,
		log:      log,
	}
}

// CreateShortLink registers a new link. A custom code is validated and
// must be free; otherwise a random 6-character code is generated and
// regenerated until the store accepts it.
func (s *linkService) CreateShortLink(req *models.CreateLinkRequest, baseURL string) (*models.CreateLinkResponse, error) {
	link := &entities.Link{
		ID:          uuid.NewString(),
		OriginalURL: req.URL,
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if req.ShortCode != nil && *req.ShortCode != "" {
		code := *req.ShortCode
		if err := validateCustomCode(code); err != nil {
			return nil, err
		}
		link.ShortCode = code
		if err := s.links.CreateLink(link); err != nil {
			if errors.Is(err, repository.ErrCodeTaken) {
				return nil, ErrDuplicateCode
			}
			return nil, err
		}
	} else {
		// Collisions are unlikely at 62^6 codes but still possible, so
		// regenerate until the store accepts one.
		for {
			code, err := generateShortCode(generatedCodeLength)
			if err != nil {
				return nil, err
			}
			link.ShortCode = code
			err = s.links.CreateLink(link)
			if err == nil {
				break
			}
			if !errors.Is(err, repository.ErrCodeTaken) {
				return nil, err
			}
		}
	}

	s.log.Info("link created",
		zap.String("link_id", link.ID),
		zap.String("short_code", link.ShortCode))

	return &models.CreateLinkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		ShortURL:    strings.TrimSuffix(baseURL, "/") + "/" + link.ShortCode,
		CreatedAt:   link.CreatedAt,
	}, nil
}

// ResolveRedirect maps a short code to its destination, records the
// click synchronously and kicks off geolocation enrichment in the
// background. The caller gets the URL as soon as the click is in the
// ledger; enrichment is never awaited.
func (s *linkService) ResolveRedirect(shortCode, ip, userAgent, referer string) (string, error) {
	link, fromCache := s.lookup(shortCode)
	if link == nil {
		return "", ErrNotFound
	}
	if !link.IsActive {
		return "", ErrLinkInactive
	}

	click := &entities.Click{
		ID:        uuid.NewString(),
		LinkID:    link.ID,
		Timestamp: time.Now().UTC(),
		IP:        ip,
		UserAgent: userAgent,
		Referer:   referer,
	}

	if err := s.clicks.AppendClick(click); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) && fromCache {
			// Stale cache entry for a deleted link
			s.invalidate(shortCode)
			return "", ErrNotFound
		}
		// The redirect target was already resolved; losing one click is
		// preferable to failing the visitor.
		s.log.Warn("click discarded",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return link.OriginalURL, nil
	}

	go s.enricher.Enrich(click.ID, ip)

	if !fromCache {
		s.cacheLink(link)
	}

	return link.OriginalURL, nil
}

// GetLink retrieves a link by id
func (s *linkService) GetLink(id string) (*entities.Link, error) {
	link := s.links.FindByID(id)
	if link == nil {
		return nil, ErrNotFound
	}
	return link, nil
}

// GetLinkByCode retrieves a link by its short code
func (s *linkService) GetLinkByCode(code string) (*entities.Link, error) {
	link := s.links.FindByShortCode(code)
	if link == nil {
		return nil, ErrNotFound
	}
	return link, nil
}

// ListLinks returns all links, newest first
func (s *linkService) ListLinks() []entities.Link {
	return s.links.ListLinks()
}

// ToggleLink flips a link's active flag
func (s *linkService) ToggleLink(id string) error {
	link := s.links.FindByID(id)
	if link == nil || !s.links.ToggleActive(id) {
		return ErrNotFound
	}
	s.invalidate(link.ShortCode)
	return nil
}

// DeleteLink removes a link together with its whole click history
func (s *linkService) DeleteLink(id string) error {
	link := s.links.FindByID(id)
	if link == nil || !s.links.DeleteLink(id) {
		return ErrNotFound
	}
	s.invalidate(link.ShortCode)
	s.log.Info("link deleted",
		zap.String("link_id", id),
		zap.String("short_code", link.ShortCode))
	return nil
}

// lookup resolves a short code through the cache when available,
// falling back to the store. The second return reports a cache hit.
func (s *linkService) lookup(shortCode string) (*entities.Link, bool) {
	if s.cache != nil {
		var cached cache.CachedLink
		if err := s.cache.GetJSON(context.Background(), cacheKey(shortCode), &cached); err == nil && cached.LinkID != "" {
			return &entities.Link{
				ID:          cached.LinkID,
				ShortCode:   shortCode,
				OriginalURL: cached.OriginalURL,
				IsActive:    cached.IsActive,
			}, true
		}
	}
	return s.links.FindByShortCode(shortCode), false
}

func (s *linkService) cacheLink(link *entities.Link) {
	if s.cache == nil {
		return
	}
	entry := cache.CachedLink{
		LinkID:      link.ID,
		OriginalURL: link.OriginalURL,
		IsActive:    link.IsActive,
	}
	if err := s.cache.SetJSON(context.Background(), cacheKey(link.ShortCode), entry, time.Hour); err != nil {
		s.log.Debug("cache set failed", zap.Error(err))
	}
}

func (s *linkService) invalidate(shortCode string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.Background(), cacheKey(shortCode)); err != nil {
		s.log.Debug("cache invalidation failed", zap.Error(err))
	}
}

func cacheKey(shortCode string) string {
	return fmt.Sprintf("link:%s", shortCode)
}

func validateCustomCode(code string) error {
	if reservedCodes[strings.ToLower(code)] {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidCode, code)
	}
	if !customCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: must be 3-20 characters of letters, digits, - or _", ErrInvalidCode)
	}
	return nil
}

func generateShortCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
