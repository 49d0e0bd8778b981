package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/cryptrac/cryptrac-engine/internal/currency"
)

const (
	defaultCatalogTTL   = 10 * time.Minute
	catalogRetryBackoff = 30 * time.Second
)

// CatalogService keeps the gateway's enabled currency set in memory. When
// the gateway cannot be reached it serves the last good set, or the static
// default catalog if there is none. Concurrent refreshes share one upstream
// call, and after a failure the gateway is not asked again until the retry
// backoff has passed.
type CatalogService struct {
	src     GatewayCatalog
	ttl     time.Duration
	backoff time.Duration
	now     func() time.Time
	sf      singleflight.Group

	mu        sync.RWMutex
	cached    currency.EnabledSet
	fetchedAt time.Time
	failedAt  time.Time
}

func NewCatalogService(src GatewayCatalog, ttl time.Duration) *CatalogService {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &CatalogService{src: src, ttl: ttl, backoff: catalogRetryBackoff, now: time.Now}
}

func (s *CatalogService) Enabled(ctx context.Context) currency.EnabledSet {
	if set, ok := s.current(); ok {
		return set
	}

	v, _, _ := s.sf.Do("catalog", func() (any, error) {
		// callers share this fetch, so one caller going away must not fail it
		return s.refresh(context.WithoutCancel(ctx)), nil
	})
	return v.(currency.EnabledSet)
}

// current returns the set to serve without calling the gateway, if any.
func (s *CatalogService) current() (currency.EnabledSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	if s.cached != nil && now.Sub(s.fetchedAt) < s.ttl {
		return s.cached, true
	}
	if s.src == nil || (!s.failedAt.IsZero() && now.Sub(s.failedAt) < s.backoff) {
		return s.fallbackLocked(), true
	}
	return nil, false
}

func (s *CatalogService) refresh(ctx context.Context) currency.EnabledSet {
	codes, err := s.src.EnabledCodes(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil && len(codes) > 0 {
		s.cached = currency.NewEnabledSet(codes...)
		s.fetchedAt = s.now()
		s.failedAt = time.Time{}
		return s.cached
	}

	s.failedAt = s.now()
	log.Warn().Err(err).Dur("retry_in", s.backoff).Msg("gateway currency catalog unavailable")
	return s.fallbackLocked()
}

func (s *CatalogService) fallbackLocked() currency.EnabledSet {
	if s.cached != nil {
		return s.cached
	}
	return currency.NewEnabledSet(currency.DefaultGatewayCodes()...)
}
