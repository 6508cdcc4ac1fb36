package costing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice_Valid(t *testing.T) {
	cases := map[string]float64{
		"$2.00":    2,
		"$1.50":    1.5,
		"$3":       3,
		"$.5":      0.5,
		"$7.":      7,
		" $0.25 ":  0.25,
		"$-1.25":   -1.25,
		"$2.2000000000000002": 2.2000000000000002,
	}
	for raw, want := range cases {
		got, err := ParsePrice(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParsePrice_Malformed(t *testing.T) {
	for _, raw := range []string{"", "$", "2.00", "$$2.00", "$1,000.00", "$1e3", "$NaN", "$+Inf", "$abc", "USD 2", "$2.00$"} {
		_, err := ParsePrice(raw)
		var malformed *MalformedPriceError
		require.True(t, errors.As(err, &malformed), "raw %q: expected MalformedPriceError, got %v", raw, err)
		assert.Equal(t, raw, malformed.Raw)
	}
}

func TestFormatPrice_RoundTrips(t *testing.T) {
	for _, v := range []float64{0, 2.2000000000000002, 1.6500000000000001, 11, -3.5} {
		got, err := ParsePrice(FormatPrice(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.Equal(t, "$2.2", FormatPrice(2.2))
	assert.Equal(t, "$11.00", FormatAmount(11))
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.92, Round2(11.0/12.0))
	assert.Equal(t, 1.01, Round2(12.100000000000001/12))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
}

func TestRound2_LargeValuesStayFinite(t *testing.T) {
	assert.Equal(t, 1e307, Round2(1e307))
	assert.Equal(t, -1e307, Round2(-1e307))
	assert.Equal(t, 4503599627370496.0, Round2(4503599627370496))
}
