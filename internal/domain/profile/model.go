package profile

import (
	"strings"
	"time"
)

// EntityType says whether the freelancer bills as a person or a company.
type EntityType string

const (
	EntityIndividual EntityType = "individual"
	EntityBusiness   EntityType = "business"
)

// Profile is the freelancer's own billing identity. There is at most one.
type Profile struct {
	EntityType                 EntityType `json:"entity_type"`
	BusinessName               string     `json:"business_name,omitempty"`
	FirstName                  string     `json:"first_name,omitempty"`
	LastName                   string     `json:"last_name,omitempty"`
	Email                      string     `json:"email"`
	Phone                      string     `json:"phone,omitempty"`
	AddressLine1               string     `json:"address_line1,omitempty"`
	AddressLine2               string     `json:"address_line2,omitempty"`
	City                       string     `json:"city,omitempty"`
	State                      string     `json:"state,omitempty"`
	ZipCode                    string     `json:"zip_code,omitempty"`
	Country                    string     `json:"country,omitempty"`
	InvoicePrefix              string     `json:"invoice_prefix"`
	NextInvoiceNumber          int        `json:"next_invoice_number"`
	DefaultPaymentTerms        *int       `json:"default_payment_terms,omitempty"`
	DefaultInvoiceNotes        string     `json:"default_invoice_notes,omitempty"`
	DefaultPaymentInstructions string     `json:"default_payment_instructions,omitempty"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

// DisplayName is the business name for businesses and the full name otherwise.
func (p *Profile) DisplayName() string {
	if p.EntityType == EntityBusiness {
		return p.BusinessName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// FullAddress formats the postal address, one line per component.
func (p *Profile) FullAddress() string {
	var locality []string
	for _, part := range []string{p.City, p.State, p.ZipCode} {
		if strings.TrimSpace(part) != "" {
			locality = append(locality, part)
		}
	}
	var lines []string
	for _, line := range []string{p.AddressLine1, p.AddressLine2, strings.Join(locality, ", "), p.Country} {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
