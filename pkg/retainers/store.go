package retainers

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ErrNotFound is returned when no matching retainer exists
var ErrNotFound = fmt.Errorf("retainer not found")

// Store handles retainer persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new retainer store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the retainers table if it doesn't exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS retainers (
		id VARCHAR(36) PRIMARY KEY,
		guild_id VARCHAR(32) NOT NULL,
		client_id VARCHAR(32) NOT NULL,
		lawyer_id VARCHAR(32) NOT NULL,
		terms TEXT,
		status VARCHAR(16) NOT NULL,
		signed_name VARCHAR(128),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		signed_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_retainers_guild_client ON retainers(guild_id, client_id);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure retainers table: %w", err)
	}
	return nil
}

// Insert creates a new retainer
func (s *Store) Insert(ctx context.Context, r *Retainer) error {
	query := `
		INSERT INTO retainers (id, guild_id, client_id, lawyer_id, terms, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		r.ID, r.GuildID, r.ClientID, r.LawyerID, r.Terms, r.Status,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert retainer: %w", err)
	}
	return nil
}

// Get retrieves a retainer by id within a guild
func (s *Store) Get(ctx context.Context, guildID, id string) (*Retainer, error) {
	query := `
		SELECT id, guild_id, client_id, lawyer_id, COALESCE(terms, ''), status,
		       COALESCE(signed_name, ''), created_at, updated_at, signed_at
		FROM retainers
		WHERE guild_id = $1 AND id = $2
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, guildID, id))
}

// ListForClient lists a client's retainers, newest first
func (s *Store) ListForClient(ctx context.Context, guildID, clientID string) ([]*Retainer, error) {
	query := `
		SELECT id, guild_id, client_id, lawyer_id, COALESCE(terms, ''), status,
		       COALESCE(signed_name, ''), created_at, updated_at, signed_at
		FROM retainers
		WHERE guild_id = $1 AND client_id = $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, guildID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list retainers: %w", err)
	}
	defer rows.Close()

	var retainers []*Retainer
	for rows.Next() {
		r, err := scanRetainer(rows)
		if err != nil {
			return nil, err
		}
		retainers = append(retainers, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list retainers: %w", err)
	}
	return retainers, nil
}

// MarkSigned transitions a pending retainer to signed
func (s *Store) MarkSigned(ctx context.Context, guildID, id, signedName string, at time.Time) error {
	query := `
		UPDATE retainers
		SET status = 'signed', signed_name = $3, signed_at = $4, updated_at = NOW()
		WHERE guild_id = $1 AND id = $2 AND status = 'pending'
	`
	return s.transition(ctx, query, guildID, id, signedName, at)
}

// MarkCancelled transitions a pending retainer to cancelled
func (s *Store) MarkCancelled(ctx context.Context, guildID, id string) error {
	query := `
		UPDATE retainers
		SET status = 'cancelled', updated_at = NOW()
		WHERE guild_id = $1 AND id = $2 AND status = 'pending'
	`
	return s.transition(ctx, query, guildID, id)
}

func (s *Store) transition(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update retainer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update retainer: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanOne(row *sql.Row) (*Retainer, error) {
	r, err := scanRetainer(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return r, err
}

func scanRetainer(row rowScanner) (*Retainer, error) {
	r := &Retainer{}
	var signedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.GuildID, &r.ClientID, &r.LawyerID, &r.Terms, &r.Status,
		&r.SignedName, &r.CreatedAt, &r.UpdatedAt, &signedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan retainer: %w", err)
	}
	if signedAt.Valid {
		t := signedAt.Time
		r.SignedAt = &t
	}
	return r, nil
}
