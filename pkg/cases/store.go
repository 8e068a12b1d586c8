package cases

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ErrNotFound is returned when no matching case exists
var ErrNotFound = fmt.Errorf("case not found")

// Store handles case persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new case store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the cases table if it doesn't exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS cases (
		id BIGSERIAL PRIMARY KEY,
		guild_id VARCHAR(32) NOT NULL,
		case_number VARCHAR(64) NOT NULL,
		client_id VARCHAR(32) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		status VARCHAR(16) NOT NULL,
		assigned_lawyers TEXT[] NOT NULL DEFAULT '{}',
		lead_attorney_id VARCHAR(32),
		result VARCHAR(16),
		opened_by VARCHAR(32) NOT NULL,
		closed_by VARCHAR(32),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		closed_at TIMESTAMP WITH TIME ZONE,
		UNIQUE (guild_id, case_number)
	);

	CREATE INDEX IF NOT EXISTS idx_cases_guild_client ON cases(guild_id, client_id);
	CREATE INDEX IF NOT EXISTS idx_cases_guild_status ON cases(guild_id, status);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure cases table: %w", err)
	}
	return nil
}

// CountActiveForClient counts a client's non-closed cases in a guild.
// Pending and open both count; closed never does.
func (s *Store) CountActiveForClient(ctx context.Context, guildID, clientID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM cases
		WHERE guild_id = $1 AND client_id = $2 AND status <> 'closed'
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, guildID, clientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count client cases: %w", err)
	}
	return count, nil
}

// Get retrieves a case by guild and case number
func (s *Store) Get(ctx context.Context, guildID, caseNumber string) (*Case, error) {
	query := selectColumns + ` WHERE guild_id = $1 AND case_number = $2`
	return s.scanOne(s.db.QueryRowContext(ctx, query, guildID, caseNumber))
}

// ListForClient lists all of a client's cases in a guild, newest first
func (s *Store) ListForClient(ctx context.Context, guildID, clientID string) ([]*Case, error) {
	query := selectColumns + ` WHERE guild_id = $1 AND client_id = $2 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, guildID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

// ListForLawyer lists non-closed cases a lawyer is assigned to
func (s *Store) ListForLawyer(ctx context.Context, guildID, userID string) ([]*Case, error) {
	query := selectColumns + ` WHERE guild_id = $1 AND $2 = ANY(assigned_lawyers) AND status <> 'closed' ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

// Insert creates a new case
func (s *Store) Insert(ctx context.Context, c *Case) error {
	if c.AssignedLawyers == nil {
		c.AssignedLawyers = []string{}
	}
	now := time.Now().UTC()
	query := `
		INSERT INTO cases (guild_id, case_number, client_id, title, description, status, assigned_lawyers, lead_attorney_id, opened_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		c.GuildID, c.CaseNumber, c.ClientID, c.Title, c.Description, c.Status,
		pq.Array(c.AssignedLawyers), c.LeadAttorneyID, c.OpenedBy, now,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to insert case: %w", err)
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// Update persists mutable case fields
func (s *Store) Update(ctx context.Context, c *Case) error {
	query := `
		UPDATE cases
		SET status = $3, assigned_lawyers = $4, lead_attorney_id = NULLIF($5, ''),
		    result = NULLIF($6, ''), closed_by = NULLIF($7, ''), closed_at = $8, updated_at = NOW()
		WHERE guild_id = $1 AND case_number = $2
	`
	result, err := s.db.ExecContext(ctx, query,
		c.GuildID, c.CaseNumber, c.Status, pq.Array(c.AssignedLawyers),
		c.LeadAttorneyID, c.Result, c.ClosedBy, c.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `
	SELECT id, guild_id, case_number, client_id, title, description, status,
	       assigned_lawyers, lead_attorney_id, result, opened_by, closed_by,
	       created_at, updated_at, closed_at
	FROM cases`

func (s *Store) scanOne(row *sql.Row) (*Case, error) {
	c, err := scanCase(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

func (s *Store) scanAll(rows *sql.Rows) ([]*Case, error) {
	var result []*Case
	for rows.Next() {
		c, err := scanCase(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cases: %w", err)
	}
	return result, nil
}

func scanCase(scan func(dest ...interface{}) error) (*Case, error) {
	var c Case
	var description, leadAttorney, result, closedBy sql.NullString
	var closedAt sql.NullTime

	err := scan(
		&c.ID, &c.GuildID, &c.CaseNumber, &c.ClientID, &c.Title, &description, &c.Status,
		pq.Array(&c.AssignedLawyers), &leadAttorney, &result, &c.OpenedBy, &closedBy,
		&c.CreatedAt, &c.UpdatedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	c.LeadAttorneyID = leadAttorney.String
	c.Result = Result(result.String)
	c.ClosedBy = closedBy.String
	if closedAt.Valid {
		t := closedAt.Time
		c.ClosedAt = &t
	}
	if c.AssignedLawyers == nil {
		c.AssignedLawyers = []string{}
	}
	return &c, nil
}
