package jobs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barrister-bot/barrister/pkg/staff"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func postingColumns() []string {
	return []string{"id", "guild_id", "title", "description", "role", "status", "posted_by", "closed_by", "created_at", "updated_at", "closed_at"}
}

func TestStoreEnsureSchema(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS job_postings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPosting(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO job_postings").
		WithArgs("J1", "G1", "Hiring paralegals", "entry level", staff.RoleParalegal, StatusOpen, "U1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p := &Posting{
		ID:          "J1",
		GuildID:     "G1",
		Title:       "Hiring paralegals",
		Description: "entry level",
		Role:        staff.RoleParalegal,
		Status:      StatusOpen,
		PostedBy:    "U1",
	}
	require.NoError(t, store.Insert(context.Background(), p))
	assert.Equal(t, now, p.CreatedAt)
}

func TestGetPostingNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectQuery("SELECT id, guild_id, title").
		WithArgs("G1", "J404").
		WillReturnRows(sqlmock.NewRows(postingColumns()))

	_, err := store.Get(context.Background(), "G1", "J404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOpenScansRows(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, guild_id, title").
		WithArgs("G1").
		WillReturnRows(sqlmock.NewRows(postingColumns()).
			AddRow("J1", "G1", "Hiring paralegals", "", "Paralegal", "open", "U1", "", now, now, nil).
			AddRow("J2", "G1", "Junior Associate opening", "litigation", "Junior Associate", "open", "U1", "", now, now, nil))

	postings, err := store.ListOpen(context.Background(), "G1")
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, staff.RoleParalegal, postings[0].Role)
	assert.True(t, postings[1].IsOpen())
}

func TestCloseAlreadyClosed(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectExec("UPDATE job_postings").
		WithArgs("G1", "J1", "U1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Close(context.Background(), "G1", "J1", "U1", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertApplicationDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectQuery("INSERT INTO job_applications").
		WithArgs("A1", "J1", "G1", "U2", "pick me").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	err := store.InsertApplication(context.Background(), &Application{
		ID: "A1", JobID: "J1", GuildID: "G1", UserID: "U2", Statement: "pick me",
	})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestCountApplications(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM job_applications`).
		WithArgs("G1", "J1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := store.CountApplications(context.Background(), "G1", "J1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
