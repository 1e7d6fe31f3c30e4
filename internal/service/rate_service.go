package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lnledger/config"
	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// RateServiceImpl implements ports.RateService. Rates come from an external
// JSON feed and are cached; a feed outage serves the last cached value.
type RateServiceImpl struct {
	cfg    config.RatesConfig
	cache  ports.RateCache
	client *http.Client
	log    zerolog.Logger
}

// NewRateService creates a new RateServiceImpl.
func NewRateService(cfg config.RatesConfig, cache ports.RateCache, log zerolog.Logger) *RateServiceImpl {
	return &RateServiceImpl{
		cfg:    cfg,
		cache:  cache,
		client: &http.Client{Timeout: cfg.FeedTimeout},
		log:    log.With().Str("component", "rates").Logger(),
	}
}

// Rates returns fiat currency units per BTC, cache first.
func (s *RateServiceImpl) Rates(ctx context.Context) (map[string]float64, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	rates, err := s.fetch(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("rate feed fetch failed")
		return nil, apperror.Wrap("SYS_003", "Exchange rates unavailable", http.StatusBadGateway, err)
	}

	if err := s.cache.Set(ctx, rates, s.cfg.CacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("rate cache write failed")
	}
	return rates, nil
}

func (s *RateServiceImpl) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	var rates map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("decode rate feed: %w", err)
	}
	return rates, nil
}
