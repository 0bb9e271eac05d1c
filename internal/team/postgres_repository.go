package team

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

const teamColumns = "id, name, fellowship_id, leader_id, active, created_at, updated_at"

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.FellowshipID, &t.LeaderID, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new team record.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (name, fellowship_id, leader_id, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, t.Name, t.FellowshipID, t.LeaderID, t.Active).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTeamName
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// GetByID retrieves a single team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := fmt.Sprintf(`SELECT %s FROM teams WHERE id = $1`, teamColumns)

	t, err := scanTeam(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return t, nil
}

// List retrieves all teams ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Team, error) {
	query := fmt.Sprintf(`SELECT %s FROM teams ORDER BY name ASC`, teamColumns)
	return r.list(ctx, query)
}

// ListActive retrieves all active teams ordered by name.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]Team, error) {
	query := fmt.Sprintf(`SELECT %s FROM teams WHERE active ORDER BY name ASC`, teamColumns)
	return r.list(ctx, query)
}

// ListByFellowship retrieves all active teams belonging to a fellowship.
func (r *PostgresRepository) ListByFellowship(ctx context.Context, fellowshipID uuid.UUID) ([]Team, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM teams
		WHERE active AND fellowship_id = $1
		ORDER BY name ASC`, teamColumns)
	return r.list(ctx, query, fellowshipID)
}

// ListForMember retrieves all active teams the given user belongs to.
func (r *PostgresRepository) ListForMember(ctx context.Context, userID uuid.UUID) ([]Team, error) {
	query := `
		SELECT t.id, t.name, t.fellowship_id, t.leader_id, t.active, t.created_at, t.updated_at
		FROM teams t
		WHERE t.active AND EXISTS (
			SELECT 1 FROM team_members tm
			WHERE tm.team_id = t.id AND tm.user_id = $1
		)
		ORDER BY t.name ASC`
	return r.list(ctx, query, userID)
}

// ListByLeader retrieves all active teams led by the given user.
func (r *PostgresRepository) ListByLeader(ctx context.Context, leaderID uuid.UUID) ([]Team, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM teams
		WHERE active AND leader_id = $1
		ORDER BY name ASC`, teamColumns)
	return r.list(ctx, query, leaderID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Team, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	if teams == nil {
		teams = []Team{}
	}

	return teams, nil
}

// Update applies non-nil fields to a team record and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Team, error) {
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
		UPDATE teams
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), argIdx, teamColumns)

	t, err := scanTeam(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateTeamName
		}
		return nil, fmt.Errorf("updating team: %w", err)
	}

	return t, nil
}

// Delete removes a team by its UUID. Memberships cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	return nil
}

// AddMember inserts a membership row.
func (r *PostgresRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`

	_, err := r.pool.Exec(ctx, query, teamID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyMember
			case "23503":
				return ErrTeamNotFound
			}
		}
		return fmt.Errorf("inserting team member: %w", err)
	}

	return nil
}

// RemoveMember deletes a membership row.
func (r *PostgresRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, teamID, userID)
	if err != nil {
		return fmt.Errorf("deleting team member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// ListMembers retrieves all membership rows for a team ordered by join time.
func (r *PostgresRepository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]Member, error) {
	query := `
		SELECT team_id, user_id, joined_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY joined_at ASC`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning team member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team member rows: %w", err)
	}

	if members == nil {
		members = []Member{}
	}

	return members, nil
}

// CountMembers returns the number of members on a team.
func (r *PostgresRepository) CountMembers(ctx context.Context, teamID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM team_members WHERE team_id = $1`, teamID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting team members: %w", err)
	}
	return count, nil
}
