// Package walletservice manages business logic layer of wallet balances.
package walletservice

import (
	"context"

	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/go-petr/pln-wallet/pkg/currencypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by wallet service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package walletservice
type Repo interface {
	ListBalances(ctx context.Context, owner string) ([]domain.Balance, error)
	Add(ctx context.Context, owner, currency, amount string) (domain.Balance, error)
	Subtract(ctx context.Context, owner, currency, amount string) (domain.Balance, error)
}

// Service facilitates wallet service layer logic.
type Service struct {
	repo Repo
}

// New returns wallet service struct to manage wallet business logic.
func New(wr Repo) *Service {
	return &Service{repo: wr}
}

// GetBalances returns the owner's balances keyed by currency code.
// Currencies are present only while their balance is positive.
func (s *Service) GetBalances(ctx context.Context, owner string) (map[string]string, error) {
	balances, err := s.repo.ListBalances(ctx, owner)
	if err != nil {
		return nil, err
	}

	wallet := make(map[string]string, len(balances))
	for _, b := range balances {
		wallet[b.Currency] = b.Amount
	}

	return wallet, nil
}

// Add validates the request and atomically increments the owner's balance.
func (s *Service) Add(ctx context.Context, owner, currency, amount string) (domain.Balance, error) {
	if err := validRequest(ctx, currency, amount); err != nil {
		return domain.Balance{}, err
	}

	balance, err := s.repo.Add(ctx, owner, currency, amount)
	if err != nil {
		return balance, err
	}

	return balance, nil
}

// Subtract validates the request and atomically decrements the owner's balance.
// Validation failures and insufficient funds leave the balance unchanged.
func (s *Service) Subtract(ctx context.Context, owner, currency, amount string) (domain.Balance, error) {
	if err := validRequest(ctx, currency, amount); err != nil {
		return domain.Balance{}, err
	}

	balance, err := s.repo.Subtract(ctx, owner, currency, amount)
	if err != nil {
		return balance, err
	}

	return balance, nil
}

func validRequest(ctx context.Context, currency, amount string) error {
	l := zerolog.Ctx(ctx)

	if !currencypkg.IsSupportedCurrency(currency) {
		return domain.ErrUnsupportedCurrency
	}

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}

	return nil
}
