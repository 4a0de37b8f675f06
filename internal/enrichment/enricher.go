package enrichment

import (
	"context"

	"go.uber.org/zap"

	"linkpulse/internal/geoip"
	"linkpulse/internal/repository"
)

// Enricher attaches IP-derived geolocation to recorded clicks after
// the redirect has already been answered. It carries only the click
// id, never the click itself; the ledger re-validates existence under
// its own lock, so a click deleted mid-flight is simply skipped.
type Enricher struct {
	clicks    repository.ClickRepository
	resolvers []geoip.Resolver
	log       *zap.Logger
}

// New creates an enricher over an ordered resolver chain. The first
// resolver that answers wins; the rest are never consulted.
func New(clicks repository.ClickRepository, resolvers []geoip.Resolver, log *zap.Logger) *Enricher {
	return &Enricher{
		clicks:    clicks,
		resolvers: resolvers,
		log:       log,
	}
}

// Enrich resolves the click's source IP and patches the result onto
// the click. Best effort and at most once: when every resolver fails
// the click keeps an empty location forever, and nothing retries.
// Meant to run on its own goroutine; it never blocks the request path.
func (e *Enricher) Enrich(clickID, ip string) {
	if !geoip.IsRoutable(ip) {
		return
	}

	for _, resolver := range e.resolvers {
		geo, err := resolver.Resolve(context.Background(), ip)
		if err != nil {
			e.log.Debug("geolocation lookup failed",
				zap.String("resolver", resolver.Name()),
				zap.String("click_id", clickID),
				zap.Error(err))
			continue
		}
		e.clicks.PatchClickGeo(clickID, geo)
		return
	}

	e.log.Warn("geolocation unresolved, click stays unenriched",
		zap.String("click_id", clickID))
}
