// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnsupportedCurrency indicates that the currency code is not in the supported set.
	ErrUnsupportedCurrency = errors.New("currency is not supported")
	// ErrRateUnavailable indicates that the provider table has no rate for the currency.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	// ErrProviderUnreachable indicates that the rate provider could not be reached
	// and no cached rate exists to fall back on.
	ErrProviderUnreachable = errors.New("rate provider unreachable")
	// ErrRateTableNotFound indicates that no rate table snapshot is cached.
	ErrRateTableNotFound = errors.New("rate table not cached")
)

// ExchangeRate holds the ask rate of a foreign currency against PLN for a given date.
// Immutable once fetched; a refresh produces a new value rather than mutating this one.
type ExchangeRate struct {
	Currency string `json:"currency"`
	Ask      string `json:"ask"`
	AsOfDate string `json:"as_of_date"`
	// Stale marks a rate served past its freshness window because the provider
	// was unreachable. Valuations built on stale rates are flagged degraded.
	Stale bool `json:"stale,omitempty"`
}

// RateTable is a full provider snapshot of rates for one effective date.
type RateTable struct {
	AsOfDate  string            `json:"as_of_date"`
	Rates     map[string]string `json:"rates"` // currency code -> ask rate
	FetchedAt time.Time         `json:"fetched_at"`
}

// ValuationIncompleteError reports the currency that made a wallet valuation fail.
type ValuationIncompleteError struct {
	Currency string
	Err      error
}

func (e *ValuationIncompleteError) Error() string {
	return fmt.Sprintf("valuation incomplete: no rate for %s", e.Currency)
}

func (e *ValuationIncompleteError) Unwrap() error {
	return e.Err
}
