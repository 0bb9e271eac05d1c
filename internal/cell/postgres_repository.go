package cell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const cellColumns = "id, name, fellowship_id, leader_id, active, created_at, updated_at"

func scanCell(row pgx.Row) (*Cell, error) {
	var c Cell
	err := row.Scan(&c.ID, &c.Name, &c.FellowshipID, &c.LeaderID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new cell record.
func (r *PostgresRepository) Create(ctx context.Context, c *Cell) error {
	query := `
		INSERT INTO cells (name, fellowship_id, leader_id, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, c.Name, c.FellowshipID, c.LeaderID, c.Active).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting cell: %w", err)
	}

	return nil
}

// GetByID retrieves a single cell by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Cell, error) {
	query := fmt.Sprintf(`SELECT %s FROM cells WHERE id = $1`, cellColumns)

	c, err := scanCell(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCellNotFound
		}
		return nil, fmt.Errorf("querying cell: %w", err)
	}

	return c, nil
}

// List retrieves all cells ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Cell, error) {
	query := fmt.Sprintf(`SELECT %s FROM cells ORDER BY name ASC`, cellColumns)
	return r.list(ctx, query)
}

// ListByFellowship retrieves all cells belonging to a fellowship.
func (r *PostgresRepository) ListByFellowship(ctx context.Context, fellowshipID uuid.UUID) ([]Cell, error) {
	query := fmt.Sprintf(`SELECT %s FROM cells WHERE fellowship_id = $1 ORDER BY name ASC`, cellColumns)
	return r.list(ctx, query, fellowshipID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Cell, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cells: %w", err)
	}
	defer rows.Close()

	var cells []Cell
	for rows.Next() {
		c, err := scanCell(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cell row: %w", err)
		}
		cells = append(cells, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cell rows: %w", err)
	}

	if cells == nil {
		cells = []Cell{}
	}

	return cells, nil
}

// Update applies non-nil fields to a cell record and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Cell, error) {
	var sets []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.FellowshipID != nil {
		sets = append(sets, fmt.Sprintf("fellowship_id = $%d", argIdx))
		args = append(args, *fields.FellowshipID)
		argIdx++
	}
	if fields.LeaderID != nil {
		sets = append(sets, fmt.Sprintf("leader_id = $%d", argIdx))
		args = append(args, *fields.LeaderID)
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
		UPDATE cells
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), argIdx, cellColumns)

	c, err := scanCell(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCellNotFound
		}
		return nil, fmt.Errorf("updating cell: %w", err)
	}

	return c, nil
}

// Delete removes a cell by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cells WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting cell: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCellNotFound
	}

	return nil
}
