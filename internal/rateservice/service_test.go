package rateservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-petr/pln-wallet/internal/domain"
	"github.com/go-petr/pln-wallet/pkg/currencypkg"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

func testService(t *testing.T) (*Service, *MockStore, *MockProvider) {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	provider := NewMockProvider(ctrl)

	svc := New(store, provider, 24*time.Hour)
	svc.now = func() time.Time { return testTime }

	return svc, store, provider
}

func freshTable() domain.RateTable {
	return domain.RateTable{
		AsOfDate: "2023-03-01",
		Rates: map[string]string{
			currencypkg.USD: "4.43",
			currencypkg.EUR: "4.71",
		},
		FetchedAt: testTime.Add(-time.Hour),
	}
}

func staleTable() domain.RateTable {
	return domain.RateTable{
		AsOfDate: "2023-02-27",
		Rates: map[string]string{
			currencypkg.USD: "4.40",
		},
		FetchedAt: testTime.Add(-25 * time.Hour),
	}
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name          string
		currency      string
		buildStubs    func(store *MockStore, provider *MockProvider)
		checkResponse func(t *testing.T, rate domain.ExchangeRate, err error)
	}{
		{
			name:     "UnsupportedCurrency",
			currency: "RUB",
			buildStubs: func(store *MockStore, provider *MockProvider) {
				store.EXPECT().GetFresh(gomock.Any()).Times(0)
				provider.EXPECT().FetchTable(gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, rate domain.ExchangeRate, err error) {
				require.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
				require.Empty(t, rate)
			},
		},
		{
			name:     "CacheHitNoProviderCall",
			currency: currencypkg.USD,
			buildStubs: func(store *MockStore, provider *MockProvider) {
				store.EXPECT().GetFresh(gomock.Any()).Times(1).Return(freshTable(), nil)
				provider.EXPECT().FetchTable(gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, rate domain.ExchangeRate, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.ExchangeRate{
					Currency: currencypkg.USD,
					Ask:      "4.43",
					AsOfDate: "2023-03-01",
				}, rate)
			},
		},
		{
			name:     "StaleEntryTriggersRefresh",
			currency: currencypkg.USD,
			buildStubs: func(store *MockStore, provider *MockProvider) {
				store.EXPECT().GetFresh(gomock.Any()).Times(1).Return(staleTable(), nil)

				fetched := freshTable()
				fetched.FetchedAt = time.Time{}
				provider.EXPECT().FetchTable(gomock.Any()).Times(1).Return(fetched, nil)

				stamped := freshTable()
				stamped.FetchedAt = testTime
				store.EXPECT().SetTable(gomock.Any(), gomock.Eq(stamped)).Times(1).Return(nil)
			},
			checkResponse: func(t *testing.T, rate domain.ExchangeRate, err error) {
				require.NoError(t, err)
				require.Equal(t, "4.43", rate.Ask)
				require.Equal(t, "2023-03-01", rate.AsOfDate)
				require.False(t, rate.Stale)
			},
		},
		{
			name:     "EmptyCacheTriggersRefresh",
			currency: currencypkg.EUR,
			buildStubs: func(store *MockStore, provider *MockProvider) {
				store.EXPECT().GetFresh(gomock.Any()).Times(1).
					Return(domain.RateTable{}, domain.ErrRateTableNotFound)
				provider.EXPECT().FetchTable(gomock.Any()).Times(1).Return(freshTable(), nil)
				store.EXPECT().SetTable(gomock.Any(), gomock.Any()).Times(1).Return(nil)
			},
			checkResponse: func(t *testing.T, rate domain.ExchangeRate, err error) {
				require.NoError(t, err)
				require.Equal(t, "4.71", rate.Ask)
			},
		},
		{
			name:     "CurrencyAbsentFromFreshTable",
			currency: currencypkg.XDR,
			buildStubs: func(store *MockStore, provider *MockProvider) {
				store.EXPECT().GetFresh(gomock.Any()).Times(1).Return(freshTable(), nil)
				provider.EXPECT().FetchTable(gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, rate domain.ExchangeRate, err error) {
				require.ErrorIs(t, err, domain.ErrRateUnavailable)
			},
		},
		{
			name:     "ProviderDownServesStale",
			currency: currencypkg.USD,
			buildStubs: func(store *MockStore, provider *MockProvider) {
				store.EXPECT().GetFresh(gomock.Any()).Times(1).
					Return(domain.RateTable{}, domain.ErrRateTableNotFound)
				provider.EXPECT().FetchTable(gomock.Any()).Times(1).
					Return(domain.RateTable{}, domain.ErrProviderUnreachable)
				store.EXPECT().GetLast(gomock.Any()).Times(1).Return(staleTable(), nil)
			},
			checkResponse: func(t *testing.T, rate domain.ExchangeRate, err error) {
				require.NoError(t, err)
				require.Equal(t, "4.40", rate.Ask)
				require.Equal(t, "2023-02-27", rate.AsOfDate)
				require.True(t, rate.Stale)
			},
		},
		{
			name:     "ProviderDownNoFallback",
			currency: currencypkg.USD,
			buildStubs: func(store *MockStore, provider *MockProvider) {
				store.EXPECT().GetFresh(gomock.Any()).Times(1).
					Return(domain.RateTable{}, domain.ErrRateTableNotFound)
				provider.EXPECT().FetchTable(gomock.Any()).Times(1).
					Return(domain.RateTable{}, domain.ErrProviderUnreachable)
				store.EXPECT().GetLast(gomock.Any()).Times(1).
					Return(domain.RateTable{}, domain.ErrRateTableNotFound)
			},
			checkResponse: func(t *testing.T, rate domain.ExchangeRate, err error) {
				require.ErrorIs(t, err, domain.ErrProviderUnreachable)
			},
		},
		{
			name:     "CacheWriteFailureStillServes",
			currency: currencypkg.USD,
			buildStubs: func(store *MockStore, provider *MockProvider) {
				store.EXPECT().GetFresh(gomock.Any()).Times(1).
					Return(domain.RateTable{}, domain.ErrRateTableNotFound)
				provider.EXPECT().FetchTable(gomock.Any()).Times(1).Return(freshTable(), nil)
				store.EXPECT().SetTable(gomock.Any(), gomock.Any()).Times(1).
					Return(domain.ErrRateTableNotFound)
			},
			checkResponse: func(t *testing.T, rate domain.ExchangeRate, err error) {
				require.NoError(t, err)
				require.Equal(t, "4.43", rate.Ask)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			svc, store, provider := testService(t)
			tc.buildStubs(store, provider)

			rate, err := svc.Get(context.Background(), tc.currency)

			tc.checkResponse(t, rate, err)
		})
	}
}

func TestGetSingleFlight(t *testing.T) {
	const callers = 10

	svc, store, provider := testService(t)

	// Every caller observes a stale cache, yet only one provider call happens.
	arrived := make(chan struct{}, callers)

	store.EXPECT().GetFresh(gomock.Any()).Times(callers).
		DoAndReturn(func(ctx context.Context) (domain.RateTable, error) {
			arrived <- struct{}{}
			return domain.RateTable{}, domain.ErrRateTableNotFound
		})

	provider.EXPECT().FetchTable(gomock.Any()).Times(1).
		DoAndReturn(func(ctx context.Context) (domain.RateTable, error) {
			// Do not complete the flight until every caller has observed the miss.
			for i := 0; i < callers; i++ {
				<-arrived
			}

			time.Sleep(10 * time.Millisecond)

			return freshTable(), nil
		})

	store.EXPECT().SetTable(gomock.Any(), gomock.Any()).Times(1).Return(nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		asks []string
	)

	// Hold every goroutine at the start line so they observe staleness together.
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			<-start

			rate, err := svc.Get(context.Background(), currencypkg.USD)

			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
			asks = append(asks, rate.Ask)
		}()
	}

	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "4.43", asks[i])
	}
}

func TestList(t *testing.T) {
	svc, store, provider := testService(t)

	store.EXPECT().GetFresh(gomock.Any()).Times(1).Return(freshTable(), nil)
	provider.EXPECT().FetchTable(gomock.Any()).Times(0)

	rates, err := svc.List(context.Background())
	require.NoError(t, err)

	// Ordered alphabetically by code for deterministic output.
	require.Equal(t, []domain.ExchangeRate{
		{Currency: currencypkg.EUR, Ask: "4.71", AsOfDate: "2023-03-01"},
		{Currency: currencypkg.USD, Ask: "4.43", AsOfDate: "2023-03-01"},
	}, rates)
}
