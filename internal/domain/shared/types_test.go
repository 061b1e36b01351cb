package shared

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_RoundTrip(t *testing.T) {
	v, err := StringList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["x"]`)))
	assert.Equal(t, StringList{"x"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)

	assert.Error(t, l.Scan(42))
}

func TestRound2(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1.01").Equal(Round2(decimal.RequireFromString("1.005"))))
	assert.True(t, decimal.RequireFromString("-1.01").Equal(Round2(decimal.RequireFromString("-1.005"))))
}

func TestPercent(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(Percent(decimal.NewFromInt(5), decimal.Zero)))
	assert.True(t, decimal.NewFromInt(25).Equal(PercentOf(1, 4)))
}

func TestDateRange_Contains(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	r := DateRange{From: &from, To: &to}

	assert.True(t, r.Contains(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, DateRange{}.Contains(time.Now()))
	assert.True(t, DateRange{}.IsZero())
}
