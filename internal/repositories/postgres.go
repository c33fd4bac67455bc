package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/socialcal/backend/internal/db"
	"github.com/socialcal/backend/internal/models"
)

// PostgresProfileRepository provides PostgreSQL-backed persistence for profiles.
type PostgresProfileRepository struct {
	pool db.Pool
}

// NewPostgresProfileRepository constructs a profile repository backed by PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Create persists a new profile record.
func (r *PostgresProfileRepository) Create(ctx context.Context, profile models.Profile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO profiles (id, email, full_name, password_hash, avatar_url, avatar_status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, profile.ID, profile.Email, profile.FullName, profile.PasswordHash, profile.AvatarURL, profile.AvatarStatus, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

// FindByID fetches a profile by its identifier.
func (r *PostgresProfileRepository) FindByID(ctx context.Context, id string) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, full_name, password_hash, avatar_url, avatar_status, created_at, updated_at
        FROM profiles
        WHERE id = $1
    `, id)

	return scanProfile(row)
}

// FindByEmail fetches a profile by its email address.
func (r *PostgresProfileRepository) FindByEmail(ctx context.Context, email string) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, full_name, password_hash, avatar_url, avatar_status, created_at, updated_at
        FROM profiles
        WHERE email = $1
    `, email)

	return scanProfile(row)
}

// FindByIDs fetches the profiles for the provided ids, ordered by id. Missing
// ids are skipped rather than treated as an error.
func (r *PostgresProfileRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, email, full_name, password_hash, avatar_url, avatar_status, created_at, updated_at
        FROM profiles
        WHERE id = ANY($1)
        ORDER BY id
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// SetAvatarPending marks the profile's avatar as waiting for ingestion.
func (r *PostgresProfileRepository) SetAvatarPending(ctx context.Context, id string) error {
	return r.setAvatar(ctx, id, models.AvatarStatusPending, "")
}

// MarkAvatarReady records a successfully ingested avatar location.
func (r *PostgresProfileRepository) MarkAvatarReady(ctx context.Context, id, url string) error {
	return r.setAvatar(ctx, id, models.AvatarStatusReady, url)
}

// MarkAvatarFailed records a failed avatar ingestion attempt.
func (r *PostgresProfileRepository) MarkAvatarFailed(ctx context.Context, id string) error {
	return r.setAvatar(ctx, id, models.AvatarStatusFailed, "")
}

func (r *PostgresProfileRepository) setAvatar(ctx context.Context, id, status, url string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE profiles
        SET avatar_status = $2, avatar_url = $3, updated_at = $4
        WHERE id = $1
    `, id, status, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update profile avatar: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.PasswordHash,
		&profile.AvatarURL,
		&profile.AvatarStatus,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return profile, nil
}

// PostgresFriendshipRepository provides PostgreSQL-backed persistence for friendship edges.
type PostgresFriendshipRepository struct {
	pool db.Pool
}

// NewPostgresFriendshipRepository constructs a friendship repository backed by PostgreSQL.
func NewPostgresFriendshipRepository(pool db.Pool) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{pool: pool}
}

// Create persists a new friendship edge. The unique index on the unordered
// pair turns a racing duplicate into ErrConflict regardless of direction.
func (r *PostgresFriendshipRepository) Create(ctx context.Context, friendship models.Friendship) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO friendships (id, requester_id, target_id, status, created_at, responded_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, friendship.ID, friendship.RequesterID, friendship.TargetID, friendship.Status, friendship.CreatedAt, friendship.RespondedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert friendship: %w", err)
	}

	return nil
}

// FindByID fetches a friendship edge by its identifier.
func (r *PostgresFriendshipRepository) FindByID(ctx context.Context, id string) (models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Friendship{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, requester_id, target_id, status, created_at, responded_at
        FROM friendships
        WHERE id = $1
    `, id)

	return scanFriendship(row)
}

// FindBetween fetches the edge between two users, whichever way it points.
func (r *PostgresFriendshipRepository) FindBetween(ctx context.Context, userA, userB string) (models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Friendship{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, requester_id, target_id, status, created_at, responded_at
        FROM friendships
        WHERE (requester_id = $1 AND target_id = $2)
           OR (requester_id = $2 AND target_id = $1)
    `, userA, userB)

	return scanFriendship(row)
}

// ListForUser returns edges touching the user, optionally filtered by status.
func (r *PostgresFriendshipRepository) ListForUser(ctx context.Context, userID, status string) ([]models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, requester_id, target_id, status, created_at, responded_at
        FROM friendships
        WHERE (requester_id = $1 OR target_id = $1)
          AND ($2 = '' OR status = $2)
        ORDER BY created_at DESC
    `, userID, status)
	if err != nil {
		return nil, fmt.Errorf("query friendships: %w", err)
	}
	defer rows.Close()

	var friendships []models.Friendship
	for rows.Next() {
		friendship, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		friendships = append(friendships, friendship)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friendships: %w", err)
	}

	return friendships, nil
}

// UpdateStatus updates the status (and responded_at) for a friendship edge.
func (r *PostgresFriendshipRepository) UpdateStatus(ctx context.Context, id, status string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	respondedAt := sql.NullTime{}
	if status != models.FriendshipPending {
		respondedAt = sql.NullTime{Valid: true, Time: time.Now().UTC()}
	}

	tag, err := conn.Exec(ctx, `
        UPDATE friendships
        SET status = $2, responded_at = $3
        WHERE id = $1
    `, id, status, respondedAt)
	if err != nil {
		return fmt.Errorf("update friendship: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a friendship edge by its identifier.
func (r *PostgresFriendshipRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM friendships
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteBetween removes the edge between two users, whichever way it points.
func (r *PostgresFriendshipRepository) DeleteBetween(ctx context.Context, userA, userB string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM friendships
        WHERE (requester_id = $1 AND target_id = $2)
           OR (requester_id = $2 AND target_id = $1)
    `, userA, userB)
	if err != nil {
		return fmt.Errorf("delete friendship between users: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanFriendship(row pgx.Row) (models.Friendship, error) {
	var (
		friendship  models.Friendship
		respondedAt sql.NullTime
	)

	err := row.Scan(
		&friendship.ID,
		&friendship.RequesterID,
		&friendship.TargetID,
		&friendship.Status,
		&friendship.CreatedAt,
		&respondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Friendship{}, ErrNotFound
		}
		return models.Friendship{}, fmt.Errorf("scan friendship: %w", err)
	}

	if respondedAt.Valid {
		t := respondedAt.Time.UTC()
		friendship.RespondedAt = &t
	}

	return friendship, nil
}

// PostgresAvailabilityRepository provides PostgreSQL-backed persistence for availability records.
type PostgresAvailabilityRepository struct {
	pool db.Pool
}

// NewPostgresAvailabilityRepository constructs an availability repository backed by PostgreSQL.
func NewPostgresAvailabilityRepository(pool db.Pool) *PostgresAvailabilityRepository {
	return &PostgresAvailabilityRepository{pool: pool}
}

// GetRange returns availability records for the given users between from and
// to inclusive, ordered by date then user id for deterministic output.
func (r *PostgresAvailabilityRepository) GetRange(ctx context.Context, userIDs []string, from, to models.Date, statusFilter string) ([]models.AvailabilityRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT user_id, date, status
        FROM availability
        WHERE user_id = ANY($1)
          AND date >= $2 AND date <= $3
          AND ($4 = '' OR status = $4)
        ORDER BY date, user_id
    `, userIDs, from.Time(), to.Time(), statusFilter)
	if err != nil {
		return nil, fmt.Errorf("query availability: %w", err)
	}
	defer rows.Close()

	var records []models.AvailabilityRecord
	for rows.Next() {
		var (
			record models.AvailabilityRecord
			day    time.Time
		)
		if err := rows.Scan(&record.UserID, &day, &record.Status); err != nil {
			return nil, fmt.Errorf("scan availability record: %w", err)
		}
		record.Date = models.DateOf(day)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability records: %w", err)
	}

	return records, nil
}

// SetStatus upserts the record for (userID, date); a nil status clears it.
// The ON CONFLICT clause makes racing writes converge on the last one instead
// of surfacing a duplicate-key error.
func (r *PostgresAvailabilityRepository) SetStatus(ctx context.Context, userID string, date models.Date, status *string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if status == nil {
		_, err = conn.Exec(ctx, `
            DELETE FROM availability
            WHERE user_id = $1 AND date = $2
        `, userID, date.Time())
		if err != nil {
			return fmt.Errorf("delete availability record: %w", err)
		}
		return nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO availability (user_id, date, status)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, date)
        DO UPDATE SET status = EXCLUDED.status
    `, userID, date.Time(), *status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("upsert availability record: %w", err)
	}

	return nil
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)
var _ FriendshipRepository = (*PostgresFriendshipRepository)(nil)
var _ AvailabilityRepository = (*PostgresAvailabilityRepository)(nil)
