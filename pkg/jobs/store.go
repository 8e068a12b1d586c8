package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ErrNotFound is returned when no matching posting exists
var ErrNotFound = fmt.Errorf("job posting not found")

// ErrAlreadyApplied is returned when a user applies to a posting twice
var ErrAlreadyApplied = fmt.Errorf("user already applied to this posting")

// Store handles job posting persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new job store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the job tables if they don't exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS job_postings (
		id VARCHAR(36) PRIMARY KEY,
		guild_id VARCHAR(32) NOT NULL,
		title VARCHAR(256) NOT NULL,
		description TEXT,
		role VARCHAR(64) NOT NULL,
		status VARCHAR(16) NOT NULL,
		posted_by VARCHAR(32) NOT NULL,
		closed_by VARCHAR(32),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		closed_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_job_postings_guild_status ON job_postings(guild_id, status);

	CREATE TABLE IF NOT EXISTS job_applications (
		id VARCHAR(36) PRIMARY KEY,
		job_id VARCHAR(36) NOT NULL REFERENCES job_postings(id),
		guild_id VARCHAR(32) NOT NULL,
		user_id VARCHAR(32) NOT NULL,
		statement TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE (job_id, user_id)
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure job tables: %w", err)
	}
	return nil
}

// Insert creates a new posting
func (s *Store) Insert(ctx context.Context, p *Posting) error {
	query := `
		INSERT INTO job_postings (id, guild_id, title, description, role, status, posted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		p.ID, p.GuildID, p.Title, p.Description, p.Role, p.Status, p.PostedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job posting: %w", err)
	}
	return nil
}

// Get retrieves a posting by id within a guild
func (s *Store) Get(ctx context.Context, guildID, id string) (*Posting, error) {
	query := `
		SELECT id, guild_id, title, COALESCE(description, ''), role, status,
		       posted_by, COALESCE(closed_by, ''), created_at, updated_at, closed_at
		FROM job_postings
		WHERE guild_id = $1 AND id = $2
	`
	p := &Posting{}
	var closedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, guildID, id).Scan(
		&p.ID, &p.GuildID, &p.Title, &p.Description, &p.Role, &p.Status,
		&p.PostedBy, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt, &closedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}
	return p, nil
}

// ListOpen lists the guild's open postings, newest first
func (s *Store) ListOpen(ctx context.Context, guildID string) ([]*Posting, error) {
	query := `
		SELECT id, guild_id, title, COALESCE(description, ''), role, status,
		       posted_by, COALESCE(closed_by, ''), created_at, updated_at, closed_at
		FROM job_postings
		WHERE guild_id = $1 AND status = 'open'
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []*Posting
	for rows.Next() {
		p := &Posting{}
		var closedAt sql.NullTime
		if err := rows.Scan(
			&p.ID, &p.GuildID, &p.Title, &p.Description, &p.Role, &p.Status,
			&p.PostedBy, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt, &closedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		if closedAt.Valid {
			t := closedAt.Time
			p.ClosedAt = &t
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return postings, nil
}

// Close marks an open posting closed. Returns ErrNotFound if the posting
// does not exist or is already closed.
func (s *Store) Close(ctx context.Context, guildID, id, closedBy string, at time.Time) error {
	query := `
		UPDATE job_postings
		SET status = 'closed', closed_by = $3, closed_at = $4, updated_at = NOW()
		WHERE guild_id = $1 AND id = $2 AND status = 'open'
	`
	res, err := s.db.ExecContext(ctx, query, guildID, id, closedBy, at)
	if err != nil {
		return fmt.Errorf("failed to close job posting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close job posting: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertApplication records a user's application
func (s *Store) InsertApplication(ctx context.Context, a *Application) error {
	query := `
		INSERT INTO job_applications (id, job_id, guild_id, user_id, statement)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id, user_id) DO NOTHING
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query, a.ID, a.JobID, a.GuildID, a.UserID, a.Statement).Scan(&a.CreatedAt)
	if err == sql.ErrNoRows {
		return ErrAlreadyApplied
	}
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// ListApplications lists a posting's applications, oldest first
func (s *Store) ListApplications(ctx context.Context, guildID, jobID string) ([]*Application, error) {
	query := `
		SELECT id, job_id, guild_id, user_id, COALESCE(statement, ''), created_at
		FROM job_applications
		WHERE guild_id = $1 AND job_id = $2
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, guildID, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		a := &Application{}
		if err := rows.Scan(&a.ID, &a.JobID, &a.GuildID, &a.UserID, &a.Statement, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// CountApplications counts a posting's applications
func (s *Store) CountApplications(ctx context.Context, guildID, jobID string) (int, error) {
	query := `SELECT COUNT(*) FROM job_applications WHERE guild_id = $1 AND job_id = $2`
	var count int
	if err := s.db.QueryRowContext(ctx, query, guildID, jobID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}
