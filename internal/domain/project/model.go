package project

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project groups work for a client and carries the default hourly rate.
type Project struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
