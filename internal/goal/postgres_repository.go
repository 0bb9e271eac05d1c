package goal

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

const goalColumns = `id, title, description, goal_type, entity_id, target_value,
	current_value, deadline, active, created_at, updated_at`

func scanGoal(row pgx.Row) (*Goal, error) {
	var g Goal
	err := row.Scan(
		&g.ID, &g.Title, &g.Description, &g.GoalType, &g.EntityID, &g.TargetValue,
		&g.CurrentValue, &g.Deadline, &g.Active, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a new goal record.
func (r *PostgresRepository) Create(ctx context.Context, g *Goal) error {
	query := `
		INSERT INTO goals (title, description, goal_type, entity_id, target_value, current_value, deadline, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		g.Title, g.Description, g.GoalType, g.EntityID, g.TargetValue, g.CurrentValue, g.Deadline, g.Active,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}

	return nil
}

// GetByID retrieves a single goal by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Goal, error) {
	query := fmt.Sprintf(`SELECT %s FROM goals WHERE id = $1`, goalColumns)

	g, err := scanGoal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("querying goal: %w", err)
	}

	return g, nil
}

// List retrieves all goals, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Goal, error) {
	query := fmt.Sprintf(`SELECT %s FROM goals ORDER BY created_at DESC`, goalColumns)
	return r.list(ctx, query)
}

// ListByEntity retrieves all goals for a subject (user or team).
func (r *PostgresRepository) ListByEntity(ctx context.Context, goalType Type, entityID uuid.UUID) ([]Goal, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM goals
		WHERE goal_type = $1 AND entity_id = $2
		ORDER BY created_at DESC`, goalColumns)
	return r.list(ctx, query, goalType, entityID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Goal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning goal row: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goal rows: %w", err)
	}

	if goals == nil {
		goals = []Goal{}
	}

	return goals, nil
}

// Update applies non-nil fields to a goal record and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Goal, error) {
	var sets []string
	var args []any
	argIdx := 1

	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.Title != nil {
		addSet("title", *fields.Title)
	}
	if fields.Description != nil {
		addSet("description", *fields.Description)
	}
	if fields.TargetValue != nil {
		addSet("target_value", *fields.TargetValue)
	}
	if fields.CurrentValue != nil {
		addSet("current_value", *fields.CurrentValue)
	}
	if fields.Deadline != nil {
		addSet("deadline", *fields.Deadline)
	}
	if fields.Active != nil {
		addSet("active", *fields.Active)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE goals
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), argIdx, goalColumns)

	g, err := scanGoal(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("updating goal: %w", err)
	}

	return g, nil
}

// Delete removes a goal by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return nil
}
