package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Method is how the money arrived.
type Method string

const (
	MethodBankWire Method = "bank_wire"
	MethodZelle    Method = "zelle"
	MethodCashApp  Method = "cashapp"
	MethodVenmo    Method = "venmo"
	MethodStripe   Method = "stripe"
	MethodPayPal   Method = "paypal"
	MethodCheck    Method = "check"
	MethodCash     Method = "cash"
)

// Methods lists the accepted payment methods.
var Methods = []Method{
	MethodBankWire,
	MethodZelle,
	MethodCashApp,
	MethodVenmo,
	MethodStripe,
	MethodPayPal,
	MethodCheck,
	MethodCash,
}

// Valid reports whether m is an accepted method.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// Payment is money received against an invoice.
type Payment struct {
	ID              string          `json:"id"`
	InvoiceID       string          `json:"invoice_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	PaymentMethod   Method          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
