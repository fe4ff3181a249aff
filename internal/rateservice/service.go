// Package rateservice manages business logic layer of exchange rates.
package rateservice

import (
	"context"
	"sort"
	"time"

	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/go-petr/pln-wallet/pkg/currencypkg"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Store provides cache store layer interface needed by rate service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package rateservice
type Store interface {
	GetFresh(ctx context.Context) (domain.RateTable, error)
	GetLast(ctx context.Context) (domain.RateTable, error)
	SetTable(ctx context.Context, table domain.RateTable) error
}

// Provider fetches the full current rate table from the external source.
type Provider interface {
	FetchTable(ctx context.Context) (domain.RateTable, error)
}

// Service serves exchange rates from a time-boxed cache, refreshing the whole
// table from the provider on a miss.
type Service struct {
	store    Store
	provider Provider
	ttl      time.Duration
	flight   singleflight.Group
	now      func() time.Time
}

// New returns rate service struct to manage exchange rate business logic.
func New(store Store, provider Provider, ttl time.Duration) *Service {
	return &Service{
		store:    store,
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the rate for the given supported currency, refreshing the cached
// table when it is older than the freshness window.
func (s *Service) Get(ctx context.Context, currency string) (domain.ExchangeRate, error) {
	var rate domain.ExchangeRate

	if !currencypkg.IsSupportedCurrency(currency) {
		return rate, domain.ErrUnsupportedCurrency
	}

	table, stale, err := s.table(ctx)
	if err != nil {
		return rate, err
	}

	ask, ok := table.Rates[currency]
	if !ok {
		return rate, domain.ErrRateUnavailable
	}

	rate = domain.ExchangeRate{
		Currency: currency,
		Ask:      ask,
		AsOfDate: table.AsOfDate,
		Stale:    stale,
	}

	return rate, nil
}

// List returns all rates of the current table ordered by currency code.
func (s *Service) List(ctx context.Context) ([]domain.ExchangeRate, error) {
	table, stale, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(table.Rates))
	for code := range table.Rates {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	rates := make([]domain.ExchangeRate, 0, len(codes))
	for _, code := range codes {
		rates = append(rates, domain.ExchangeRate{
			Currency: code,
			Ask:      table.Rates[code],
			AsOfDate: table.AsOfDate,
			Stale:    stale,
		})
	}

	return rates, nil
}

// table returns the current rate table and whether it was served stale.
func (s *Service) table(ctx context.Context) (domain.RateTable, bool, error) {
	l := zerolog.Ctx(ctx)

	cached, err := s.store.GetFresh(ctx)
	if err == nil && s.now().Sub(cached.FetchedAt) < s.ttl {
		return cached, false, nil
	}

	if err != nil && err != domain.ErrRateTableNotFound {
		l.Warn().Err(err).Msg("rate cache store read failed")
	}

	// Concurrent misses collapse into a single provider call; every waiter
	// receives the same freshly fetched table.
	fetched, err, _ := s.flight.Do("rate_table", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err == nil {
		return fetched.(domain.RateTable), false, nil
	}

	// Degraded fallback: serve the last known table, flagged stale, rather
	// than failing the whole read.
	last, lastErr := s.store.GetLast(ctx)
	if lastErr != nil {
		return domain.RateTable{}, false, domain.ErrProviderUnreachable
	}

	l.Warn().Str("as_of_date", last.AsOfDate).Msg("serving stale exchange rates")

	return last, true, nil
}

func (s *Service) refresh(ctx context.Context) (domain.RateTable, error) {
	l := zerolog.Ctx(ctx)

	table, err := s.provider.FetchTable(ctx)
	if err != nil {
		return table, err
	}

	table.FetchedAt = s.now()

	// A failed cache write must not discard a successfully fetched table.
	if err := s.store.SetTable(ctx, table); err != nil {
		l.Warn().Err(err).Msg("rate cache store write failed")
	}

	return table, nil
}
