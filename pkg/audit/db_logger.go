package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Logger is the interface consumed by the decision services
type Logger interface {
	// Log appends an audit entry
	Log(ctx context.Context, entry *Entry) error
}

// DBLogger implements audit logging to PostgreSQL
type DBLogger struct {
	db *sql.DB
}

// NewDBLogger creates a database-backed audit logger and ensures its table
func NewDBLogger(db *sql.DB) (*DBLogger, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	logger := &DBLogger{db: db}
	if err := logger.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure audit_entries table: %w", err)
	}
	return logger, nil
}

func (l *DBLogger) ensureTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS audit_entries (
		id BIGSERIAL PRIMARY KEY,
		guild_id VARCHAR(32) NOT NULL,
		action VARCHAR(64) NOT NULL,
		actor_id VARCHAR(32) NOT NULL,
		target_id VARCHAR(32),
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
		details JSONB,
		severity VARCHAR(16) NOT NULL,
		is_guild_owner_bypass BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_audit_entries_guild_ts ON audit_entries(guild_id, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_entries_action ON audit_entries(action);
	CREATE INDEX IF NOT EXISTS idx_audit_entries_actor ON audit_entries(actor_id);
	CREATE INDEX IF NOT EXISTS idx_audit_entries_severity ON audit_entries(severity);
	`
	_, err := l.db.Exec(query)
	return err
}

// Log appends an audit entry
func (l *DBLogger) Log(ctx context.Context, entry *Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Severity == "" {
		entry.Severity = SeverityOf(entry.Action)
	}

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	query := `
		INSERT INTO audit_entries (guild_id, action, actor_id, target_id, timestamp, details, severity, is_guild_owner_bypass)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING id
	`
	err = l.db.QueryRowContext(ctx, query,
		entry.GuildID, entry.Action, entry.ActorID, entry.TargetID,
		entry.Timestamp, string(detailsJSON), entry.Severity, entry.IsGuildOwnerBypass,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Search returns entries matching the filter, newest first
func (l *DBLogger) Search(ctx context.Context, filter SearchFilter) ([]*Entry, error) {
	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.GuildID != "" {
		conditions = append(conditions, "guild_id = "+arg(filter.GuildID))
	}
	if len(filter.Actions) > 0 {
		actions := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			actions[i] = string(a)
		}
		conditions = append(conditions, "action = ANY("+arg(pq.Array(actions))+")")
	}
	if filter.ActorID != "" {
		conditions = append(conditions, "actor_id = "+arg(filter.ActorID))
	}
	if filter.TargetID != "" {
		conditions = append(conditions, "target_id = "+arg(filter.TargetID))
	}
	if filter.Severity != "" {
		conditions = append(conditions, "severity = "+arg(string(filter.Severity)))
	}
	if filter.BypassOnly {
		conditions = append(conditions, "is_guild_owner_bypass = TRUE")
	}
	if filter.StartTime != nil {
		conditions = append(conditions, "timestamp >= "+arg(*filter.StartTime))
	}
	if filter.EndTime != nil {
		conditions = append(conditions, "timestamp <= "+arg(*filter.EndTime))
	}

	query := `
		SELECT id, guild_id, action, actor_id, COALESCE(target_id, ''), timestamp, details, severity, is_guild_owner_bypass
		FROM audit_entries
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT " + arg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var entry Entry
		var detailsJSON []byte
		if err := rows.Scan(
			&entry.ID, &entry.GuildID, &entry.Action, &entry.ActorID, &entry.TargetID,
			&entry.Timestamp, &detailsJSON, &entry.Severity, &entry.IsGuildOwnerBypass,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the cutoff and returns how many went.
// This is the only deletion path, used by the retention janitor.
func (l *DBLogger) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := l.db.ExecContext(ctx, "DELETE FROM audit_entries WHERE timestamp < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return result.RowsAffected()
}

// noOpLogger discards entries; used where audit is not configured
type noOpLogger struct{}

func (noOpLogger) Log(ctx context.Context, entry *Entry) error { return nil }

// NopLogger returns a logger that discards every entry
func NopLogger() Logger {
	return noOpLogger{}
}
