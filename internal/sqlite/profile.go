package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/billable/internal/domain/profile"
	"github.com/rpggio/billable/internal/repository"
)

// ProfileRepository implements profile.Repository for SQLite
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves the profile
func (r *ProfileRepository) Get(ctx context.Context) (*profile.Profile, error) {
	query := `
		SELECT
			entity_type, business_name, first_name, last_name, email, phone,
			address_line1, address_line2, city, state, zip_code, country,
			invoice_prefix, next_invoice_number, default_payment_terms,
			default_invoice_notes, default_payment_instructions, created_at, updated_at
		FROM profiles WHERE singleton = 1
	`
	var (
		p     profile.Profile
		terms sql.NullInt64
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, query).Scan(
		&p.EntityType,
		&p.BusinessName,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.AddressLine1,
		&p.AddressLine2,
		&p.City,
		&p.State,
		&p.ZipCode,
		&p.Country,
		&p.InvoicePrefix,
		&p.NextInvoiceNumber,
		&terms,
		&p.DefaultInvoiceNotes,
		&p.DefaultPaymentInstructions,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if terms.Valid {
		days := int(terms.Int64)
		p.DefaultPaymentTerms = &days
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// Save creates or replaces the profile
func (r *ProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	var terms sql.NullInt64
	if p.DefaultPaymentTerms != nil {
		terms = sql.NullInt64{Int64: int64(*p.DefaultPaymentTerms), Valid: true}
	}

	query := `
		INSERT INTO profiles (
			singleton, entity_type, business_name, first_name, last_name, email, phone,
			address_line1, address_line2, city, state, zip_code, country,
			invoice_prefix, next_invoice_number, default_payment_terms,
			default_invoice_notes, default_payment_instructions, created_at, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			entity_type = excluded.entity_type,
			business_name = excluded.business_name,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			address_line1 = excluded.address_line1,
			address_line2 = excluded.address_line2,
			city = excluded.city,
			state = excluded.state,
			zip_code = excluded.zip_code,
			country = excluded.country,
			invoice_prefix = excluded.invoice_prefix,
			next_invoice_number = excluded.next_invoice_number,
			default_payment_terms = excluded.default_payment_terms,
			default_invoice_notes = excluded.default_invoice_notes,
			default_payment_instructions = excluded.default_payment_instructions,
			updated_at = excluded.updated_at
	`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		p.EntityType,
		p.BusinessName,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.AddressLine1,
		p.AddressLine2,
		p.City,
		p.State,
		p.ZipCode,
		p.Country,
		p.InvoicePrefix,
		p.NextInvoiceNumber,
		terms,
		p.DefaultInvoiceNotes,
		p.DefaultPaymentInstructions,
		utc(p.CreatedAt),
		utc(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", classify(err))
	}
	return nil
}

// ClaimInvoiceNumber increments the counter in one statement so concurrent
// claims never observe the same value.
func (r *ProfileRepository) ClaimInvoiceNumber(ctx context.Context) (string, int, error) {
	var (
		prefix string
		number int
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		UPDATE profiles SET next_invoice_number = next_invoice_number + 1
		WHERE singleton = 1
		RETURNING invoice_prefix, next_invoice_number - 1
	`).Scan(&prefix, &number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, repository.ErrNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to claim invoice number: %w", err)
	}
	return prefix, number, nil
}
