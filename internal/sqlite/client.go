package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/repository"
)

// ClientRepository implements client.Repository for SQLite
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `
	id, name, email, first_name, last_name, phone,
	address_line1, address_line2, city, state, zip_code, country,
	notes, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (*client.Client, error) {
	var c client.Client
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		&c.AddressLine1,
		&c.AddressLine2,
		&c.City,
		&c.State,
		&c.ZipCode,
		&c.Country,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// Create inserts a client
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	query := `INSERT INTO clients (` + clientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Email,
		c.FirstName,
		c.LastName,
		c.Phone,
		c.AddressLine1,
		c.AddressLine2,
		c.City,
		c.State,
		c.ZipCode,
		c.Country,
		c.Notes,
		utc(c.CreatedAt),
		utc(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", classify(err))
	}
	return nil
}

// Get retrieves a client by ID
func (r *ClientRepository) Get(ctx context.Context, id string) (*client.Client, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// FindByName retrieves a client by exact, case-sensitive name
func (r *ClientRepository) FindByName(ctx context.Context, name string) (*client.Client, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE name = ? COLLATE BINARY`, name)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return c, nil
}

// List returns all clients ordered by name
func (r *ClientRepository) List(ctx context.Context) ([]client.Client, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", err)
	}
	return clients, nil
}

// Update stores every editable column of a client
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients SET
			name = ?, email = ?, first_name = ?, last_name = ?, phone = ?,
			address_line1 = ?, address_line2 = ?, city = ?, state = ?, zip_code = ?, country = ?,
			notes = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.conn(ctx).ExecContext(ctx, query,
		c.Name,
		c.Email,
		c.FirstName,
		c.LastName,
		c.Phone,
		c.AddressLine1,
		c.AddressLine2,
		c.City,
		c.State,
		c.ZipCode,
		c.Country,
		c.Notes,
		utc(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", classify(err))
	}
	return requireAffected(res)
}

// Delete removes a client; projects, time entries and invoices cascade
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return requireAffected(res)
}
