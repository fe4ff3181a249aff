// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import "github.com/go-playground/validator/v10"

// Constants for all supported currencies. The set matches the NBP table C
// currencies that carry ask rates.
const (
	AUD = "AUD"
	CAD = "CAD"
	CHF = "CHF"
	CZK = "CZK"
	DKK = "DKK"
	EUR = "EUR"
	GBP = "GBP"
	HUF = "HUF"
	JPY = "JPY"
	NOK = "NOK"
	SEK = "SEK"
	USD = "USD"
	XDR = "XDR"
)

// SupportedCurrencies holds all the supported currencies in alphabetical order.
var SupportedCurrencies = []string{
	AUD,
	CAD,
	CHF,
	CZK,
	DKK,
	EUR,
	GBP,
	HUF,
	JPY,
	NOK,
	SEK,
	USD,
	XDR,
}

// IsSupportedCurrency returns true if the currency is supported.
func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}

	return false
}

// List returns the supported currency codes in alphabetical order.
// Callers get a copy so the catalog cannot be mutated.
func List() []string {
	codes := make([]string, len(SupportedCurrencies))
	copy(codes, SupportedCurrencies)

	return codes
}

// ValidCurrency validates the currency field of http requests.
var ValidCurrency validator.Func = func(fieldLevel validator.FieldLevel) bool {
	if currency, ok := fieldLevel.Field().Interface().(string); ok {
		return IsSupportedCurrency(currency)
	}

	return false
}
