package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDefinitionRepository implements DefinitionRepository using pgxpool.
type PostgresDefinitionRepository struct {
	pool *pgxpool.Pool
}

// NewDefinitionRepository creates a DefinitionRepository backed by the given pool.
func NewDefinitionRepository(pool *pgxpool.Pool) DefinitionRepository {
	return &PostgresDefinitionRepository{pool: pool}
}

const definitionColumns = "id, name, description, type, threshold, icon, created_at"

func scanDefinition(row pgx.Row) (*Definition, error) {
	var d Definition
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Type, &d.Threshold, &d.Icon, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Insert adds a definition to the catalog.
func (r *PostgresDefinitionRepository) Insert(ctx context.Context, d *Definition) error {
	query := `
		INSERT INTO achievements (name, description, type, threshold, icon)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, d.Name, d.Description, d.Type, d.Threshold, d.Icon).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateDefinition
		}
		return fmt.Errorf("inserting achievement definition: %w", err)
	}

	return nil
}

// GetByID retrieves a single definition by its UUID.
func (r *PostgresDefinitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Definition, error) {
	query := fmt.Sprintf(`SELECT %s FROM achievements WHERE id = $1`, definitionColumns)

	d, err := scanDefinition(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDefinitionNotFound
		}
		return nil, fmt.Errorf("querying achievement definition: %w", err)
	}

	return d, nil
}

// List retrieves the full catalog ordered by threshold.
func (r *PostgresDefinitionRepository) List(ctx context.Context) ([]Definition, error) {
	query := fmt.Sprintf(`SELECT %s FROM achievements ORDER BY type ASC, threshold ASC`, definitionColumns)
	return r.list(ctx, query)
}

// ListByType retrieves definitions of a single type ordered by threshold.
func (r *PostgresDefinitionRepository) ListByType(ctx context.Context, t Type) ([]Definition, error) {
	query := fmt.Sprintf(`SELECT %s FROM achievements WHERE type = $1 ORDER BY threshold ASC`, definitionColumns)
	return r.list(ctx, query, t)
}

func (r *PostgresDefinitionRepository) list(ctx context.Context, query string, args ...any) ([]Definition, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing achievement definitions: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning achievement definition row: %w", err)
		}
		defs = append(defs, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating achievement definition rows: %w", err)
	}

	if defs == nil {
		defs = []Definition{}
	}

	return defs, nil
}

// Count counts the catalog entries.
func (r *PostgresDefinitionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM achievements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting achievement definitions: %w", err)
	}
	return count, nil
}

// PostgresUserAwardRepository implements UserAwardRepository using pgxpool.
type PostgresUserAwardRepository struct {
	pool *pgxpool.Pool
}

// NewUserAwardRepository creates a UserAwardRepository backed by the given pool.
func NewUserAwardRepository(pool *pgxpool.Pool) UserAwardRepository {
	return &PostgresUserAwardRepository{pool: pool}
}

// Insert records a user award. A nil earnedAt marks the row as a lifetime
// award, which the schema deduplicates on (user, achievement) alone; rows
// with an explicit earnedAt deduplicate per calendar month. Either
// unique-violation collapses into ErrAlreadyAwarded so concurrent evaluators
// cannot double-award.
func (r *PostgresUserAwardRepository) Insert(ctx context.Context, userID, achievementID uuid.UUID, earnedAt *time.Time) error {
	var err error
	if earnedAt != nil {
		_, err = r.pool.Exec(ctx,
			`INSERT INTO user_achievements (user_id, achievement_id, earned_at) VALUES ($1, $2, $3)`,
			userID, achievementID, *earnedAt)
	} else {
		_, err = r.pool.Exec(ctx,
			`INSERT INTO user_achievements (user_id, achievement_id, lifetime) VALUES ($1, $2, TRUE)`,
			userID, achievementID)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyAwarded
		}
		return fmt.Errorf("inserting user award: %w", err)
	}

	return nil
}

// ExistsBetween reports whether an award exists for (user, achievement) with
// earned_at inside [from, to].
func (r *PostgresUserAwardRepository) ExistsBetween(ctx context.Context, userID, achievementID uuid.UUID, from, to time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_achievements
			WHERE user_id = $1 AND achievement_id = $2
			  AND earned_at >= $3 AND earned_at <= $4
		)`, userID, achievementID, from, to).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user award in window: %w", err)
	}
	return exists, nil
}

// Exists reports whether any award exists for (user, achievement), ever.
func (r *PostgresUserAwardRepository) Exists(ctx context.Context, userID, achievementID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_achievements
			WHERE user_id = $1 AND achievement_id = $2
		)`, userID, achievementID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user award: %w", err)
	}
	return exists, nil
}

// ListByUser retrieves all awards for a user, newest first.
func (r *PostgresUserAwardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]UserAward, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, achievement_id, earned_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY earned_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user awards: %w", err)
	}
	defer rows.Close()

	var awards []UserAward
	for rows.Next() {
		var a UserAward
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementID, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scanning user award row: %w", err)
		}
		awards = append(awards, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user award rows: %w", err)
	}

	if awards == nil {
		awards = []UserAward{}
	}

	return awards, nil
}

// PostgresTeamAwardRepository implements TeamAwardRepository using pgxpool.
type PostgresTeamAwardRepository struct {
	pool *pgxpool.Pool
}

// NewTeamAwardRepository creates a TeamAwardRepository backed by the given pool.
func NewTeamAwardRepository(pool *pgxpool.Pool) TeamAwardRepository {
	return &PostgresTeamAwardRepository{pool: pool}
}

// Insert records a team award. A unique-violation collapses into ErrAlreadyAwarded.
func (r *PostgresTeamAwardRepository) Insert(ctx context.Context, teamID, achievementID uuid.UUID, earnedAt *time.Time) error {
	var err error
	if earnedAt != nil {
		_, err = r.pool.Exec(ctx,
			`INSERT INTO team_achievements (team_id, achievement_id, earned_at) VALUES ($1, $2, $3)`,
			teamID, achievementID, *earnedAt)
	} else {
		_, err = r.pool.Exec(ctx,
			`INSERT INTO team_achievements (team_id, achievement_id) VALUES ($1, $2)`,
			teamID, achievementID)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyAwarded
		}
		return fmt.Errorf("inserting team award: %w", err)
	}

	return nil
}

// ExistsBetween reports whether an award exists for (team, achievement) with
// earned_at inside [from, to].
func (r *PostgresTeamAwardRepository) ExistsBetween(ctx context.Context, teamID, achievementID uuid.UUID, from, to time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM team_achievements
			WHERE team_id = $1 AND achievement_id = $2
			  AND earned_at >= $3 AND earned_at <= $4
		)`, teamID, achievementID, from, to).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking team award in window: %w", err)
	}
	return exists, nil
}

// ListByTeam retrieves all awards for a team, newest first.
func (r *PostgresTeamAwardRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]TeamAward, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, achievement_id, earned_at
		FROM team_achievements
		WHERE team_id = $1
		ORDER BY earned_at DESC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team awards: %w", err)
	}
	defer rows.Close()

	var awards []TeamAward
	for rows.Next() {
		var a TeamAward
		if err := rows.Scan(&a.ID, &a.TeamID, &a.AchievementID, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scanning team award row: %w", err)
		}
		awards = append(awards, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team award rows: %w", err)
	}

	if awards == nil {
		awards = []TeamAward{}
	}

	return awards, nil
}
