package domain

import "errors"

var (
	// ErrInvalidAmount indicates a non-positive or non-numeric amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds indicates that the subtraction would drive the balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Balance holds the amount a user owns in a single foreign currency.
type Balance struct {
	Owner    string `json:"owner"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"` // decimal string, never negative
}

// Wallet maps held currencies to their amounts. A currency is present only
// while its balance is positive.
type Wallet struct {
	Owner    string            `json:"owner"`
	Balances map[string]string `json:"balances"`
}

// ValuationItem is one currency's contribution to a wallet valuation.
type ValuationItem struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Rate     string `json:"rate"`
	ValuePLN string `json:"value_pln"`
	AsOfDate string `json:"as_of_date"`
}

// WalletValuation is the PLN view of a wallet. Derived on every read, never stored.
type WalletValuation struct {
	Items    []ValuationItem `json:"wallet_report"`
	TotalPLN string          `json:"total_pln"`
	AsOfDate string          `json:"as_of_date,omitempty"`
	// Degraded is set when any contributing rate was served past its
	// freshness window.
	Degraded bool `json:"degraded,omitempty"`
}
