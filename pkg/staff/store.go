package staff

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ErrNotFound is returned when no matching staff record exists
var ErrNotFound = fmt.Errorf("staff record not found")

// Store handles staff record persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new staff store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the staff_records table if it doesn't exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS staff_records (
		id BIGSERIAL PRIMARY KEY,
		guild_id VARCHAR(32) NOT NULL,
		user_id VARCHAR(32) NOT NULL,
		role VARCHAR(64) NOT NULL,
		status VARCHAR(16) NOT NULL,
		history JSONB NOT NULL DEFAULT '[]',
		hired_by VARCHAR(32) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE (guild_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_staff_records_guild_role ON staff_records(guild_id, role) WHERE status = 'active';
	CREATE INDEX IF NOT EXISTS idx_staff_records_guild_status ON staff_records(guild_id, status);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure staff_records table: %w", err)
	}
	return nil
}

// CountActive counts active holders of a role in a guild. Terminated and
// inactive records never count against a cap.
func (s *Store) CountActive(ctx context.Context, guildID string, role Role) (int, error) {
	query := `
		SELECT COUNT(*) FROM staff_records
		WHERE guild_id = $1 AND role = $2 AND status = 'active'
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, guildID, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active staff: %w", err)
	}
	return count, nil
}

// Get retrieves the staff record for a user in a guild regardless of status
func (s *Store) Get(ctx context.Context, guildID, userID string) (*Record, error) {
	query := `
		SELECT id, guild_id, user_id, role, status, history, hired_by, created_at, updated_at
		FROM staff_records
		WHERE guild_id = $1 AND user_id = $2
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, guildID, userID))
}

// GetActive retrieves the active staff record for a user in a guild
func (s *Store) GetActive(ctx context.Context, guildID, userID string) (*Record, error) {
	query := `
		SELECT id, guild_id, user_id, role, status, history, hired_by, created_at, updated_at
		FROM staff_records
		WHERE guild_id = $1 AND user_id = $2 AND status = 'active'
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, guildID, userID))
}

// ListActive lists active staff in a guild ordered by role level descending
func (s *Store) ListActive(ctx context.Context, guildID string) ([]*Record, error) {
	query := `
		SELECT id, guild_id, user_id, role, status, history, hired_by, created_at, updated_at
		FROM staff_records
		WHERE guild_id = $1 AND status = 'active'
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	// highest tier first, stable within a tier
	sortByLevelDesc(records)
	return records, nil
}

// Insert creates a new staff record
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	historyJSON, err := json.Marshal(rec.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO staff_records (guild_id, user_id, role, status, history, hired_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`
	err = s.db.QueryRowContext(ctx, query,
		rec.GuildID, rec.UserID, rec.Role, rec.Status, string(historyJSON), rec.HiredBy, now,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert staff record: %w", err)
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

// Update persists the record's role, status and history
func (s *Store) Update(ctx context.Context, rec *Record) error {
	historyJSON, err := json.Marshal(rec.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	query := `
		UPDATE staff_records
		SET role = $3, status = $4, history = $5, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, rec.GuildID, rec.UserID, rec.Role, rec.Status, string(historyJSON))
	if err != nil {
		return fmt.Errorf("failed to update staff record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update staff record: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanOne(row *sql.Row) (*Record, error) {
	var rec Record
	var historyJSON []byte
	err := row.Scan(
		&rec.ID, &rec.GuildID, &rec.UserID, &rec.Role, &rec.Status,
		&historyJSON, &rec.HiredBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff record: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &rec.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &rec, nil
}

func (s *Store) scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var historyJSON []byte
	err := rows.Scan(
		&rec.ID, &rec.GuildID, &rec.UserID, &rec.Role, &rec.Status,
		&historyJSON, &rec.HiredBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan staff record: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &rec.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &rec, nil
}

func sortByLevelDesc(records []*Record) {
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && LevelOf(records[j].Role) > LevelOf(records[j-1].Role); j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}
