package valuationservice

import (
	"context"
	"testing"

	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/go-petr/pln-wallet/pkg/currencypkg"
	"github.com/go-petr/pln-wallet/pkg/errorspkg"
	"github.com/go-petr/pln-wallet/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	testOwner := randompkg.Owner()

	testCases := []struct {
		name          string
		buildStubs    func(ledger *MockLedger, rates *MockRates)
		checkResponse func(t *testing.T, valuation domain.WalletValuation, err error)
	}{
		{
			name: "OK",
			buildStubs: func(ledger *MockLedger, rates *MockRates) {
				ledger.EXPECT().GetBalances(gomock.Any(), gomock.Eq(testOwner)).Times(1).
					Return(map[string]string{
						currencypkg.USD: "100",
						currencypkg.EUR: "50",
					}, nil)

				rates.EXPECT().Get(gomock.Any(), gomock.Eq(currencypkg.EUR)).Times(1).
					Return(domain.ExchangeRate{
						Currency: currencypkg.EUR, Ask: "4.71", AsOfDate: "2023-03-01",
					}, nil)
				rates.EXPECT().Get(gomock.Any(), gomock.Eq(currencypkg.USD)).Times(1).
					Return(domain.ExchangeRate{
						Currency: currencypkg.USD, Ask: "4.00", AsOfDate: "2023-03-01",
					}, nil)
			},
			checkResponse: func(t *testing.T, valuation domain.WalletValuation, err error) {
				require.NoError(t, err)

				want := domain.WalletValuation{
					Items: []domain.ValuationItem{
						{
							Currency: currencypkg.EUR,
							Amount:   "50",
							Rate:     "4.71",
							ValuePLN: "235.50",
							AsOfDate: "2023-03-01",
						},
						{
							Currency: currencypkg.USD,
							Amount:   "100",
							Rate:     "4.00",
							ValuePLN: "400.00",
							AsOfDate: "2023-03-01",
						},
					},
					TotalPLN: "635.50",
					AsOfDate: "2023-03-01",
				}

				if diff := cmp.Diff(want, valuation); diff != "" {
					t.Errorf("valuation mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "EmptyWallet",
			buildStubs: func(ledger *MockLedger, rates *MockRates) {
				ledger.EXPECT().GetBalances(gomock.Any(), gomock.Eq(testOwner)).Times(1).
					Return(map[string]string{}, nil)
				rates.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, valuation domain.WalletValuation, err error) {
				require.NoError(t, err)
				require.Empty(t, valuation.Items)
				require.Equal(t, "0.00", valuation.TotalPLN)
				require.Empty(t, valuation.AsOfDate)
				require.False(t, valuation.Degraded)
			},
		},
		{
			name: "StaleRateFlagsDegraded",
			buildStubs: func(ledger *MockLedger, rates *MockRates) {
				ledger.EXPECT().GetBalances(gomock.Any(), gomock.Eq(testOwner)).Times(1).
					Return(map[string]string{
						currencypkg.USD: "100",
						currencypkg.EUR: "50",
					}, nil)

				rates.EXPECT().Get(gomock.Any(), gomock.Eq(currencypkg.EUR)).Times(1).
					Return(domain.ExchangeRate{
						Currency: currencypkg.EUR, Ask: "4.71", AsOfDate: "2023-03-01",
					}, nil)
				rates.EXPECT().Get(gomock.Any(), gomock.Eq(currencypkg.USD)).Times(1).
					Return(domain.ExchangeRate{
						Currency: currencypkg.USD, Ask: "4.00", AsOfDate: "2023-02-27", Stale: true,
					}, nil)
			},
			checkResponse: func(t *testing.T, valuation domain.WalletValuation, err error) {
				require.NoError(t, err)
				require.True(t, valuation.Degraded)

				// The overall date signals the least fresh contributor.
				require.Equal(t, "2023-02-27", valuation.AsOfDate)
			},
		},
		{
			name: "RateUnavailableFailsValuation",
			buildStubs: func(ledger *MockLedger, rates *MockRates) {
				ledger.EXPECT().GetBalances(gomock.Any(), gomock.Eq(testOwner)).Times(1).
					Return(map[string]string{
						currencypkg.USD: "100",
						currencypkg.XDR: "10",
					}, nil)

				rates.EXPECT().Get(gomock.Any(), gomock.Eq(currencypkg.USD)).Times(1).
					Return(domain.ExchangeRate{
						Currency: currencypkg.USD, Ask: "4.00", AsOfDate: "2023-03-01",
					}, nil)
				rates.EXPECT().Get(gomock.Any(), gomock.Eq(currencypkg.XDR)).Times(1).
					Return(domain.ExchangeRate{}, domain.ErrRateUnavailable)
			},
			checkResponse: func(t *testing.T, valuation domain.WalletValuation, err error) {
				require.Empty(t, valuation)

				var incompleteErr *domain.ValuationIncompleteError
				require.ErrorAs(t, err, &incompleteErr)
				require.Equal(t, currencypkg.XDR, incompleteErr.Currency)
				require.ErrorIs(t, err, domain.ErrRateUnavailable)
			},
		},
		{
			name: "ProviderUnreachableFailsValuation",
			buildStubs: func(ledger *MockLedger, rates *MockRates) {
				ledger.EXPECT().GetBalances(gomock.Any(), gomock.Eq(testOwner)).Times(1).
					Return(map[string]string{currencypkg.USD: "100"}, nil)

				rates.EXPECT().Get(gomock.Any(), gomock.Eq(currencypkg.USD)).Times(1).
					Return(domain.ExchangeRate{}, domain.ErrProviderUnreachable)
			},
			checkResponse: func(t *testing.T, valuation domain.WalletValuation, err error) {
				var incompleteErr *domain.ValuationIncompleteError
				require.ErrorAs(t, err, &incompleteErr)
				require.Equal(t, currencypkg.USD, incompleteErr.Currency)
			},
		},
		{
			name: "LedgerError",
			buildStubs: func(ledger *MockLedger, rates *MockRates) {
				ledger.EXPECT().GetBalances(gomock.Any(), gomock.Eq(testOwner)).Times(1).
					Return(nil, errorspkg.ErrInternal)
				rates.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, valuation domain.WalletValuation, err error) {
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			ledger := NewMockLedger(ctrl)
			rates := NewMockRates(ctrl)
			service := New(ledger, rates)

			tc.buildStubs(ledger, rates)

			valuation, err := service.Value(context.Background(), testOwner)

			tc.checkResponse(t, valuation, err)
		})
	}
}
