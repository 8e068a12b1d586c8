package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestNewDBLogger(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_entries").
			WillReturnResult(sqlmock.NewResult(0, 0))

		logger, err := NewDBLogger(db)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil database", func(t *testing.T) {
		logger, err := NewDBLogger(nil)
		assert.Error(t, err)
		assert.Nil(t, logger)
	})

	t.Run("table creation error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_entries").
			WillReturnError(errors.New("permission denied"))

		_, err := NewDBLogger(db)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to ensure audit_entries table")
	})
}

func TestLogDerivesSeverityAndTimestamp(t *testing.T) {
	db, mock := setupMockDB(t)
	logger := &DBLogger{db: db}

	mock.ExpectQuery("INSERT INTO audit_entries").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	entry := &Entry{
		GuildID: "G1",
		Action:  ActionRoleLimitBypassed,
		ActorID: "U1",
	}
	require.NoError(t, logger.Log(context.Background(), entry))
	assert.Equal(t, int64(9), entry.ID)
	assert.Equal(t, SeverityCritical, entry.Severity)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestSeverityTable(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityOf(ActionRoleLimitBypassed))
	assert.Equal(t, SeverityHigh, SeverityOf(ActionStaffFired))
	assert.Equal(t, SeverityHigh, SeverityOf(ActionConfigChanged))
	assert.Equal(t, SeverityMedium, SeverityOf(ActionStaffHired))
	assert.Equal(t, SeverityLow, SeverityOf(ActionCaseOpened))
	assert.Equal(t, SeverityLow, SeverityOf(Action("unknown")))
}

func TestNewEntry(t *testing.T) {
	details := Details{
		Before: &Snapshot{Role: "Junior Associate", Status: "active"},
		After:  &Snapshot{Role: "Senior Associate", Status: "active"},
		Reason: "quarterly review",
	}
	entry := NewEntry("G1", ActionStaffPromoted, "U6", "U5", details)

	assert.Equal(t, SeverityMedium, entry.Severity)
	assert.Equal(t, "U6", entry.ActorID)
	assert.Equal(t, "U5", entry.TargetID)
	assert.False(t, entry.IsGuildOwnerBypass)
	assert.Equal(t, "Senior Associate", entry.Details.After.Role)
}

func TestSearchWithFilters(t *testing.T) {
	db, mock := setupMockDB(t)
	logger := &DBLogger{db: db}

	now := time.Now()
	mock.ExpectQuery("SELECT id, guild_id, action, actor_id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "guild_id", "action", "actor_id", "target_id", "timestamp", "details", "severity", "is_guild_owner_bypass",
		}).AddRow(int64(1), "G1", "role_limit_bypassed", "U1", "U3", now,
			[]byte(`{"bypass_info":{"rule":"role-limit","current_count":1,"max_count":1,"reason":"interim hire"}}`),
			"critical", true))

	entries, err := logger.Search(context.Background(), SearchFilter{
		GuildID:    "G1",
		BypassOnly: true,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsGuildOwnerBypass)
	require.NotNil(t, entries[0].Details.BypassInfo)
	assert.Equal(t, 1, entries[0].Details.BypassInfo.MaxCount)
	assert.Equal(t, "interim hire", entries[0].Details.BypassInfo.Reason)
}

func TestPrune(t *testing.T) {
	db, mock := setupMockDB(t)
	logger := &DBLogger{db: db}

	cutoff := time.Now().AddDate(0, 0, -90)
	mock.ExpectExec("DELETE FROM audit_entries WHERE timestamp").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 17))

	n, err := logger.Prune(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)
}

func TestNopLogger(t *testing.T) {
	assert.NoError(t, NopLogger().Log(context.Background(), &Entry{}))
}
