package client

import (
	"strings"
	"time"
)

// Client is a customer that work is billed to.
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	AddressLine1 string    `json:"address_line1,omitempty"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	ZipCode      string    `json:"zip_code,omitempty"`
	Country      string    `json:"country,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContactName joins first and last name, or returns "" when both are blank.
func (c *Client) ContactName() string {
	return strings.TrimSpace(strings.Join(nonBlank(c.FirstName, c.LastName), " "))
}

// FullAddress formats the postal address, one line per component.
func (c *Client) FullAddress() string {
	locality := strings.Join(nonBlank(c.City, c.State, c.ZipCode), ", ")
	return strings.Join(nonBlank(c.AddressLine1, c.AddressLine2, locality, c.Country), "\n")
}

func nonBlank(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
