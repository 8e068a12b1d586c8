package permissions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ErrConfigNotFound is returned when a guild has no stored configuration
var ErrConfigNotFound = fmt.Errorf("guild permission config not found")

// Store handles guild permission configuration persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new permission config store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the guild_permission_configs table if it doesn't exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS guild_permission_configs (
		guild_id VARCHAR(32) PRIMARY KEY,
		action_roles JSONB NOT NULL DEFAULT '{}',
		admin_roles TEXT[] NOT NULL DEFAULT '{}',
		admin_users TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure guild_permission_configs table: %w", err)
	}
	return nil
}

// Get retrieves a guild's permission configuration
func (s *Store) Get(ctx context.Context, guildID string) (*GuildConfig, error) {
	query := `
		SELECT guild_id, action_roles, admin_roles, admin_users, created_at, updated_at
		FROM guild_permission_configs
		WHERE guild_id = $1
	`

	var cfg GuildConfig
	var actionRolesJSON []byte
	err := s.db.QueryRowContext(ctx, query, guildID).Scan(
		&cfg.GuildID,
		&actionRolesJSON,
		pq.Array(&cfg.AdminRoles),
		pq.Array(&cfg.AdminUsers),
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config: %w", err)
	}

	if len(actionRolesJSON) > 0 {
		if err := json.Unmarshal(actionRolesJSON, &cfg.ActionRoles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action roles: %w", err)
		}
	}
	cfg.Normalize()
	return &cfg, nil
}

// Ensure retrieves the guild's configuration, creating an empty default if
// none exists. Lazy creation is explicit at this boundary so callers of the
// permission service never observe a missing config.
func (s *Store) Ensure(ctx context.Context, guildID string) (*GuildConfig, error) {
	def := DefaultGuildConfig(guildID)
	actionRolesJSON, err := json.Marshal(def.ActionRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default action roles: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO guild_permission_configs (guild_id, action_roles, admin_roles, admin_users, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (guild_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, guildID, string(actionRolesJSON),
		pq.Array(def.AdminRoles), pq.Array(def.AdminUsers), now); err != nil {
		return nil, fmt.Errorf("failed to ensure guild config: %w", err)
	}

	return s.Get(ctx, guildID)
}

// SetActionRoles replaces the role list granted a single action
func (s *Store) SetActionRoles(ctx context.Context, guildID string, action Action, roleIDs []string) error {
	if !ValidAction(string(action)) {
		return fmt.Errorf("unknown action: %s", action)
	}
	if roleIDs == nil {
		roleIDs = []string{}
	}
	rolesJSON, err := json.Marshal(roleIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal role list: %w", err)
	}

	query := `
		UPDATE guild_permission_configs
		SET action_roles = jsonb_set(action_roles, $2, $3::jsonb, true), updated_at = NOW()
		WHERE guild_id = $1
	`
	result, err := s.db.ExecContext(ctx, query, guildID, pq.Array([]string{string(action)}), string(rolesJSON))
	if err != nil {
		return fmt.Errorf("failed to set action roles: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set action roles: %w", err)
	}
	if rows == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// SetAdminRoles replaces the blanket admin role list
func (s *Store) SetAdminRoles(ctx context.Context, guildID string, roleIDs []string) error {
	return s.setAdminColumn(ctx, guildID, "admin_roles", roleIDs)
}

// SetAdminUsers replaces the blanket admin user list
func (s *Store) SetAdminUsers(ctx context.Context, guildID string, userIDs []string) error {
	return s.setAdminColumn(ctx, guildID, "admin_users", userIDs)
}

func (s *Store) setAdminColumn(ctx context.Context, guildID, column string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	query := fmt.Sprintf(`
		UPDATE guild_permission_configs
		SET %s = $2, updated_at = NOW()
		WHERE guild_id = $1
	`, column)
	result, err := s.db.ExecContext(ctx, query, guildID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", column, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", column, err)
	}
	if rows == 0 {
		return ErrConfigNotFound
	}
	return nil
}
