package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/billable/internal/domain/project"
	"github.com/rpggio/billable/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, client_id, name, rate, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*project.Project, error) {
	var p project.Project
	if err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Rate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// Create inserts a project
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		p.ID, p.ClientID, p.Name, p.Rate.String(), utc(p.CreatedAt), utc(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create project: %w", classify(err))
	}
	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// FindByName retrieves a client's project by exact name
func (r *ProjectRepository) FindByName(ctx context.Context, clientID, name string) (*project.Project, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE client_id = ? AND name = ? COLLATE BINARY`,
		clientID, name)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return p, nil
}

// List returns projects ordered by name, optionally for one client
func (r *ProjectRepository) List(ctx context.Context, clientID string) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if clientID != "" {
		query += ` WHERE client_id = ?`
		args = append(args, clientID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// Update stores the project's name and rate
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	res, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE projects SET name = ?, rate = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Rate.String(), utc(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", classify(err))
	}
	return requireAffected(res)
}

// Delete removes a project and its time entries
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireAffected(res)
}
