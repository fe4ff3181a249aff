// Package valuationservice computes the PLN value of multi-currency wallets.
package valuationservice

import (
	"context"
	"sort"

	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/go-petr/pln-wallet/pkg/errorspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Ledger provides wallet balances needed by the valuation layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package valuationservice
type Ledger interface {
	GetBalances(ctx context.Context, owner string) (map[string]string, error)
}

// Rates provides exchange rates needed by the valuation layer.
type Rates interface {
	Get(ctx context.Context, currency string) (domain.ExchangeRate, error)
}

// Service composes the wallet ledger and the rate cache into PLN valuations.
type Service struct {
	ledger Ledger
	rates  Rates
}

// New returns valuation service struct.
func New(ledger Ledger, rates Rates) *Service {
	return &Service{
		ledger: ledger,
		rates:  rates,
	}
}

// Value recomputes the PLN view of the owner's wallet. A rate failure for any
// held currency fails the whole valuation; a partial total is never returned.
func (s *Service) Value(ctx context.Context, owner string) (domain.WalletValuation, error) {
	l := zerolog.Ctx(ctx)

	var valuation domain.WalletValuation

	wallet, err := s.ledger.GetBalances(ctx, owner)
	if err != nil {
		return valuation, err
	}

	codes := make([]string, 0, len(wallet))
	for code := range wallet {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	var (
		total    decimal.Decimal
		asOfDate string
		degraded bool
	)

	items := make([]domain.ValuationItem, 0, len(codes))

	for _, code := range codes {
		rate, err := s.rates.Get(ctx, code)
		if err != nil {
			switch err {
			case domain.ErrRateUnavailable, domain.ErrProviderUnreachable, domain.ErrUnsupportedCurrency:
				return valuation, &domain.ValuationIncompleteError{Currency: code, Err: err}
			}

			return valuation, err
		}

		amount, err := decimal.NewFromString(wallet[code])
		if err != nil {
			l.Error().Err(err).Str("currency", code).Msg("stored balance is not numeric")
			return valuation, errorspkg.ErrInternal
		}

		ask, err := decimal.NewFromString(rate.Ask)
		if err != nil {
			l.Error().Err(err).Str("currency", code).Msg("cached rate is not numeric")
			return valuation, errorspkg.ErrInternal
		}

		value := amount.Mul(ask)
		total = total.Add(value)

		// Rounded to 2 places at the edge only; the running total stays exact.
		items = append(items, domain.ValuationItem{
			Currency: code,
			Amount:   amount.String(),
			Rate:     rate.Ask,
			ValuePLN: value.StringFixed(2),
			AsOfDate: rate.AsOfDate,
		})

		// The overall date is the oldest contributor, signalling the least
		// fresh rate in the total.
		if asOfDate == "" || rate.AsOfDate < asOfDate {
			asOfDate = rate.AsOfDate
		}

		if rate.Stale {
			degraded = true
		}
	}

	valuation = domain.WalletValuation{
		Items:    items,
		TotalPLN: total.StringFixed(2),
		AsOfDate: asOfDate,
		Degraded: degraded,
	}

	return valuation, nil
}
