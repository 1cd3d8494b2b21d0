// Package money holds the rounding rules shared by time tracking and invoicing.
// Amounts are decimal values with two fractional digits; floating point is never used.
package money

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	secondsPerHour = 3600
	bucketSeconds  = 300
)

var hour = decimal.NewFromInt(secondsPerHour)

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmount returns round2(quantity × rate).
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return Round2(quantity.Mul(rate))
}

// Sum adds the given values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// RoundToFiveMinutes snaps t to the nearest 5-minute mark of its hour.
// Ties round up, so 10:02:30 becomes 10:05:00 and 10:57:30 becomes 11:00:00.
// Sub-second precision is dropped, which makes the operation idempotent.
func RoundToFiveMinutes(t time.Time) time.Time {
	intoHour := t.Minute()*60 + t.Second()
	rounded := (intoHour + bucketSeconds/2) / bucketSeconds * bucketSeconds
	start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return start.Add(time.Duration(rounded) * time.Second)
}

// DurationSeconds is the distance between the rounded start and end times.
func DurationSeconds(start, end time.Time) int64 {
	return int64(RoundToFiveMinutes(end).Sub(RoundToFiveMinutes(start)) / time.Second)
}

// Earnings prices a duration at an hourly rate. A nil rate earns nothing.
func Earnings(seconds int64, rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return Round2(decimal.NewFromInt(seconds).Mul(*rate).Div(hour))
}

// Hours converts seconds to hours rounded to two places.
func Hours(seconds int64) decimal.Decimal {
	return Round2(decimal.NewFromInt(seconds).Div(hour))
}
