package currencypkg

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSupportedCurrency(t *testing.T) {
	t.Parallel()

	for _, c := range SupportedCurrencies {
		require.True(t, IsSupportedCurrency(c))
	}

	require.False(t, IsSupportedCurrency("RUB"))
	require.False(t, IsSupportedCurrency("usd"))
	require.False(t, IsSupportedCurrency(""))
}

func TestList(t *testing.T) {
	t.Parallel()

	codes := List()

	require.Equal(t, SupportedCurrencies, codes)
	require.True(t, sort.StringsAreSorted(codes))

	// Mutating the returned slice must not affect the catalog.
	codes[0] = "ZZZ"
	require.Equal(t, AUD, SupportedCurrencies[0])
}
