package invitee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

const inviteeColumns = `id, name, phone, email, team_id, cell_id, invited_by,
	status, invite_date, service_date, attended_service, created_at, updated_at`

func scanInvitee(row pgx.Row) (*Invitee, error) {
	var i Invitee
	err := row.Scan(
		&i.ID, &i.Name, &i.Phone, &i.Email, &i.TeamID, &i.CellID, &i.InvitedBy,
		&i.Status, &i.InviteDate, &i.ServiceDate, &i.AttendedService, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts a new invitee record. Status defaults to "invited" and
// invite_date to now when unset.
func (r *PostgresRepository) Create(ctx context.Context, i *Invitee) error {
	if i.Status == "" {
		i.Status = StatusInvited
	}

	query := fmt.Sprintf(`
		INSERT INTO invitees (name, phone, email, team_id, cell_id, invited_by,
			status, invite_date, service_date, attended_service)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()), $9, $10)
		RETURNING %s`, inviteeColumns)

	var inviteDate *time.Time
	if !i.InviteDate.IsZero() {
		inviteDate = &i.InviteDate
	}

	created, err := scanInvitee(r.pool.QueryRow(ctx, query,
		i.Name, i.Phone, i.Email, i.TeamID, i.CellID, i.InvitedBy,
		i.Status, inviteDate, i.ServiceDate, i.AttendedService,
	))
	if err != nil {
		return fmt.Errorf("inserting invitee: %w", err)
	}

	*i = *created
	return nil
}

// GetByID retrieves a single invitee by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Invitee, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitees WHERE id = $1`, inviteeColumns)

	i, err := scanInvitee(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteeNotFound
		}
		return nil, fmt.Errorf("querying invitee: %w", err)
	}

	return i, nil
}

// List retrieves a paginated, filtered list of invitees, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	var conditions []string
	var args []any
	argIdx := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.TeamID != nil {
		conditions = append(conditions, fmt.Sprintf("team_id = $%d", argIdx))
		args = append(args, *filter.TeamID)
		argIdx++
	}
	if filter.InvitedBy != nil {
		conditions = append(conditions, fmt.Sprintf("invited_by = $%d", argIdx))
		args = append(args, *filter.InvitedBy)
		argIdx++
	}
	if filter.Name != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+*filter.Name+"%")
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM invitees %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting invitees: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	listQuery := fmt.Sprintf(`
		SELECT %s FROM invitees %s
		ORDER BY invite_date DESC
		LIMIT $%d OFFSET $%d`, inviteeColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	invitees, err := r.listQuery(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Invitees: invitees,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

// Update applies non-nil fields to an invitee record and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Invitee, error) {
	var sets []string
	var args []any
	argIdx := 1

	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.Name != nil {
		addSet("name", *fields.Name)
	}
	if fields.Phone != nil {
		addSet("phone", *fields.Phone)
	}
	if fields.Email != nil {
		addSet("email", *fields.Email)
	}
	if fields.TeamID != nil {
		addSet("team_id", *fields.TeamID)
	}
	if fields.CellID != nil {
		addSet("cell_id", *fields.CellID)
	}
	if fields.Status != nil {
		addSet("status", *fields.Status)
	}
	if fields.ServiceDate != nil {
		addSet("service_date", *fields.ServiceDate)
	}
	if fields.AttendedService != nil {
		addSet("attended_service", *fields.AttendedService)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE invitees
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), argIdx, inviteeColumns)

	i, err := scanInvitee(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteeNotFound
		}
		return nil, fmt.Errorf("updating invitee: %w", err)
	}

	return i, nil
}

// Delete removes an invitee by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM invitees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting invitee: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrInviteeNotFound
	}

	return nil
}

// ListByTeamBetween retrieves a team's invitees whose invite_date falls within
// [from, to].
func (r *PostgresRepository) ListByTeamBetween(ctx context.Context, teamID uuid.UUID, from, to time.Time) ([]Invitee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM invitees
		WHERE team_id = $1 AND invite_date >= $2 AND invite_date <= $3
		ORDER BY invite_date ASC`, inviteeColumns)

	return r.listQuery(ctx, query, teamID, from, to)
}

// CountByTeamBetween counts a team's invitees whose invite_date falls within
// [from, to].
func (r *PostgresRepository) CountByTeamBetween(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM invitees
		WHERE team_id = $1 AND invite_date >= $2 AND invite_date <= $3`,
		teamID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting team invitees: %w", err)
	}
	return count, nil
}

// CountByInviterBetween counts invitees created by a user within [from, to].
func (r *PostgresRepository) CountByInviterBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM invitees
		WHERE invited_by = $1 AND invite_date >= $2 AND invite_date <= $3`,
		userID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting invitees by inviter: %w", err)
	}
	return count, nil
}

// CountByInviter counts all invitees ever created by a user.
func (r *PostgresRepository) CountByInviter(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invitees WHERE invited_by = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting lifetime invitees: %w", err)
	}
	return count, nil
}

// ListInvitersBetween returns the distinct users who invited someone within
// [from, to]. Used by the background award sweep.
func (r *PostgresRepository) ListInvitersBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT invited_by FROM invitees
		WHERE invite_date >= $1 AND invite_date <= $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing inviters: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning inviter id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inviter rows: %w", err)
	}

	if ids == nil {
		ids = []uuid.UUID{}
	}

	return ids, nil
}

func (r *PostgresRepository) listQuery(ctx context.Context, query string, args ...any) ([]Invitee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invitees: %w", err)
	}
	defer rows.Close()

	var invitees []Invitee
	for rows.Next() {
		i, err := scanInvitee(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invitee row: %w", err)
		}
		invitees = append(invitees, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invitee rows: %w", err)
	}

	if invitees == nil {
		invitees = []Invitee{}
	}

	return invitees, nil
}
