// Package nbpclient fetches exchange rate tables from the NBP public API.
package nbpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Client calls the NBP exchange rates API over HTTP.
type Client struct {
	http *http.Client
	url  string
}

// New returns a Client for the given table C url with a bounded request timeout.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		url:  url,
	}
}

// The API returns an array with a single table object.
type tableResponse struct {
	EffectiveDate string `json:"effectiveDate"`
	Rates         []struct {
		Code string          `json:"code"`
		Ask  decimal.Decimal `json:"ask"`
	} `json:"rates"`
}

// FetchTable fetches the current full rate table. Any transport, status or
// parse failure maps to domain.ErrProviderUnreachable.
func (c *Client) FetchTable(ctx context.Context) (domain.RateTable, error) {
	l := zerolog.Ctx(ctx)

	var table domain.RateTable

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return table, domain.ErrProviderUnreachable
	}

	res, err := c.http.Do(req)
	if err != nil {
		l.Warn().Err(err).Msg("rate provider request failed")
		return table, domain.ErrProviderUnreachable
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		l.Warn().Int("status_code", res.StatusCode).Msg("rate provider returned non-2xx status")
		return table, domain.ErrProviderUnreachable
	}

	var body []tableResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		l.Warn().Err(err).Msg("rate provider returned malformed body")
		return table, domain.ErrProviderUnreachable
	}

	if len(body) == 0 {
		l.Warn().Msg("rate provider returned empty table list")
		return table, domain.ErrProviderUnreachable
	}

	rates := make(map[string]string, len(body[0].Rates))

	for _, r := range body[0].Rates {
		// Entries without a positive ask rate are unusable for conversions.
		if r.Code == "" || !r.Ask.IsPositive() {
			continue
		}

		rates[r.Code] = r.Ask.String()
	}

	table = domain.RateTable{
		AsOfDate: body[0].EffectiveDate,
		Rates:    rates,
	}

	return table, nil
}
