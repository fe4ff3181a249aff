// Package walletrepo manages repository layer of wallet balances.
package walletrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/go-petr/pln-wallet/pkg/dbpkg"
	"github.com/go-petr/pln-wallet/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates wallet repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns wallet RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const listBalancesQuery = `
SELECT owner, currency, amount
FROM wallets
WHERE owner = $1
ORDER BY currency
`

// ListBalances returns all positive balances of the owner ordered by currency.
func (r *RepoPGS) ListBalances(ctx context.Context, owner string) ([]domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listBalancesQuery, owner)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	defer rows.Close()

	balances := []domain.Balance{}

	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.Owner, &b.Currency, &b.Amount); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		balances = append(balances, b)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return balances, nil
}

// AddQuery increments the balance atomically, creating the row when absent.
const AddQuery = `
INSERT INTO wallets (owner, currency, amount)
VALUES ($1, $2, $3)
ON CONFLICT (owner, currency)
DO UPDATE SET amount = wallets.amount + EXCLUDED.amount
RETURNING owner, currency, amount
`

// Add atomically increments the owner's balance in the given currency.
func (r *RepoPGS) Add(ctx context.Context, owner, currency, amount string) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	var b domain.Balance

	row := r.db.QueryRowContext(ctx, AddQuery, owner, currency, amount)

	if err := row.Scan(&b.Owner, &b.Currency, &b.Amount); err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "wallets_owner_fkey" {
				return b, domain.ErrUserNotFound
			}
		}

		return b, errorspkg.ErrInternal
	}

	return b, nil
}

// SubtractQuery decrements the balance only when sufficient funds exist, so a
// failed subtraction never mutates state.
const SubtractQuery = `
UPDATE wallets
SET amount = amount - $3
WHERE owner = $1 AND currency = $2 AND amount >= $3
RETURNING owner, currency, amount
`

// The guard keeps the delete from racing a concurrent add that revived the balance.
const deleteZeroBalanceQuery = `
DELETE FROM wallets
WHERE owner = $1 AND currency = $2 AND amount = 0
`

// Subtract atomically decrements the owner's balance in the given currency.
// A balance reaching exactly zero is removed to keep the wallet sparse.
func (r *RepoPGS) Subtract(ctx context.Context, owner, currency, amount string) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	var b domain.Balance

	row := r.db.QueryRowContext(ctx, SubtractQuery, owner, currency, amount)

	if err := row.Scan(&b.Owner, &b.Currency, &b.Amount); err != nil {
		if err == sql.ErrNoRows {
			return b, domain.ErrInsufficientFunds
		}

		l.Error().Err(err).Send()

		return b, errorspkg.ErrInternal
	}

	left, err := decimal.NewFromString(b.Amount)
	if err != nil {
		l.Error().Err(err).Send()
		return b, errorspkg.ErrInternal
	}

	if left.IsZero() {
		if _, err := r.db.ExecContext(ctx, deleteZeroBalanceQuery, owner, currency); err != nil {
			l.Error().Err(err).Send()
			return b, errorspkg.ErrInternal
		}
	}

	return b, nil
}
