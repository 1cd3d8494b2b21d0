package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func at(h, m, s int) time.Time {
	return time.Date(2026, 3, 14, h, m, s, 0, time.UTC)
}

func TestRound2(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"1.004":  "1",
		"-1.005": "-1.01",
		"12.5":   "12.5",
		"0":      "0",
	}
	for in, want := range cases {
		got := Round2(decimal.RequireFromString(in))
		require.True(t, got.Equal(decimal.RequireFromString(want)), "round2(%s) = %s", in, got)
	}
}

func TestLineAmount(t *testing.T) {
	got := LineAmount(decimal.RequireFromString("1.333"), decimal.RequireFromString("75"))
	require.Equal(t, "99.98", got.StringFixed(2))
}

func TestRoundToFiveMinutes(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{at(10, 2, 30), at(10, 5, 0)},
		{at(10, 2, 29), at(10, 0, 0)},
		{at(10, 33, 0), at(10, 35, 0)},
		{at(10, 32, 29), at(10, 30, 0)},
		{at(10, 57, 30), at(11, 0, 0)},
		{at(23, 58, 0), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{at(9, 0, 0), at(9, 0, 0)},
	}
	for _, tc := range cases {
		got := RoundToFiveMinutes(tc.in)
		require.True(t, tc.want.Equal(got), "round(%s) = %s, want %s", tc.in.Format(time.TimeOnly), got, tc.want)
	}
}

func TestRoundToFiveMinutes_Idempotent(t *testing.T) {
	start := at(0, 0, 0)
	for offset := 0; offset < 2*3600; offset += 7 {
		ts := start.Add(time.Duration(offset)*time.Second + 250*time.Millisecond)
		once := RoundToFiveMinutes(ts)
		require.True(t, once.Equal(RoundToFiveMinutes(once)), "not idempotent at %s", ts)
		require.Zero(t, once.Second())
		require.Zero(t, once.Nanosecond())
		require.Zero(t, once.Minute()%5)
	}
}

func TestDurationSeconds(t *testing.T) {
	require.Equal(t, int64(1800), DurationSeconds(at(10, 2, 30), at(10, 33, 0)))
	require.Equal(t, int64(0), DurationSeconds(at(10, 1, 0), at(10, 2, 0)))
}

func TestEarnings(t *testing.T) {
	rate := decimal.RequireFromString("120")
	require.Equal(t, "60.00", Earnings(1800, &rate).StringFixed(2))

	odd := decimal.RequireFromString("33.33")
	require.Equal(t, "11.11", Earnings(1200, &odd).StringFixed(2))

	require.True(t, Earnings(3600, nil).IsZero())
}

func TestHours(t *testing.T) {
	require.Equal(t, "0.08", Hours(300).StringFixed(2))
	require.Equal(t, "1.50", Hours(5400).StringFixed(2))
}

func TestSum(t *testing.T) {
	got := Sum(decimal.RequireFromString("1.10"), decimal.RequireFromString("2.20"), decimal.RequireFromString("3.30"))
	require.Equal(t, "6.60", got.StringFixed(2))
	require.True(t, Sum().IsZero())
}
