package fellowship

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new fellowship record.
func (r *PostgresRepository) Create(ctx context.Context, f *Fellowship) error {
	query := `
		INSERT INTO fellowships (name, description, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, f.Name, f.Description, f.Active).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateFellowshipName
		}
		return fmt.Errorf("inserting fellowship: %w", err)
	}

	return nil
}

// GetByID retrieves a single fellowship by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Fellowship, error) {
	query := `
		SELECT id, name, description, active, created_at, updated_at
		FROM fellowships
		WHERE id = $1`

	var f Fellowship
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&f.ID, &f.Name, &f.Description, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFellowshipNotFound
		}
		return nil, fmt.Errorf("querying fellowship: %w", err)
	}

	return &f, nil
}

// List retrieves all fellowships ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Fellowship, error) {
	query := `
		SELECT id, name, description, active, created_at, updated_at
		FROM fellowships
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing fellowships: %w", err)
	}
	defer rows.Close()

	var fellowships []Fellowship
	for rows.Next() {
		var f Fellowship
		err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Active, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning fellowship row: %w", err)
		}
		fellowships = append(fellowships, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fellowship rows: %w", err)
	}

	if fellowships == nil {
		fellowships = []Fellowship{}
	}

	return fellowships, nil
}

// Update applies non-nil fields to a fellowship record and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Fellowship, error) {
	var sets []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *fields.Description)
		argIdx++
	}
	if fields.Active != nil {
		sets = append(sets, fmt.Sprintf("active = $%d", argIdx))
		args = append(args, *fields.Active)
		argIdx++
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE fellowships
		SET %s
		WHERE id = $%d
		RETURNING id, name, description, active, created_at, updated_at`,
		strings.Join(sets, ", "), argIdx)

	var f Fellowship
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&f.ID, &f.Name, &f.Description, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFellowshipNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateFellowshipName
		}
		return nil, fmt.Errorf("updating fellowship: %w", err)
	}

	return &f, nil
}

// Delete removes a fellowship by its UUID. Returns ErrFellowshipHasTeams if
// teams still reference it (FK RESTRICT).
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM fellowships WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrFellowshipHasTeams
		}
		return fmt.Errorf("deleting fellowship: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrFellowshipNotFound
	}

	return nil
}
