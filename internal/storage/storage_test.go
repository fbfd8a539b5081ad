package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"goalkeeper/backend/internal/models"
	"goalkeeper/backend/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newServiceWithMock(t *testing.T) (*storage.Service, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return storage.NewStorageService(db, nil), mock
}

var profileColumns = []string{"user_id", "display_name", "goal_category", "last_checkin_at", "status", "updated_at"}

func TestFindStaleProfiles_IncludesNeverCheckedIn(t *testing.T) {
	s, mock := newServiceWithMock(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-72 * time.Hour)
	old := now.Add(-100 * time.Hour)

	rows := sqlmock.NewRows(profileColumns).
		AddRow("user_U", "Uma", "health", old, "active", old).
		AddRow("user_W", "Wes", "academic", nil, "active", old)
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE status = \$1 AND .*last_checkin_at IS NULL OR last_checkin_at < \$2.* ORDER BY user_id`).
		WithArgs("active", cutoff).
		WillReturnRows(rows)

	profiles, err := s.FindStaleProfiles(context.Background(), models.StatusActive, cutoff)

	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "user_U", profiles[0].UserID)
	assert.Equal(t, models.GoalHealth, profiles[0].GoalCategory)
	require.NotNil(t, profiles[0].LastCheckinAt)
	assert.True(t, profiles[0].LastCheckinAt.Equal(old))
	assert.Nil(t, profiles[1].LastCheckinAt, "never checked in maps to nil")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindStaleProfiles_DBError(t *testing.T) {
	s, mock := newServiceWithMock(t)
	mock.ExpectQuery(`SELECT \* FROM "profiles"`).WillReturnError(errors.New("connection refused"))

	_, err := s.FindStaleProfiles(context.Background(), models.StatusActive, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUpdateProfileStatus(t *testing.T) {
	s, mock := newServiceWithMock(t)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "profiles" SET "status"=\$1,"updated_at"=\$2 WHERE user_id = \$3`).
		WithArgs("SOS", at, "user_U").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.UpdateProfileStatus(context.Background(), "user_U", models.StatusSOS, at)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileStatus_NoRow(t *testing.T) {
	s, mock := newServiceWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "profiles"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.UpdateProfileStatus(context.Background(), "ghost", models.StatusSOS, time.Now())

	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
}

func TestUpdateProfileStatus_DBError(t *testing.T) {
	s, mock := newServiceWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "profiles"`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := s.UpdateProfileStatus(context.Background(), "user_U", models.StatusSOS, time.Now())

	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrProfileNotFound)
	assert.Contains(t, err.Error(), "deadlock detected")
}

func TestRecordCheckIn_ResetsStatus(t *testing.T) {
	s, mock := newServiceWithMock(t)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "profiles" SET "last_checkin_at"=\$1,"status"=\$2,"updated_at"=\$3 WHERE user_id = \$4`).
		WithArgs(at, "active", at, "user_U").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.RecordCheckIn(context.Background(), "user_U", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileByID_NotFound(t *testing.T) {
	s, mock := newServiceWithMock(t)
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns))

	profile, err := s.GetProfileByID(context.Background(), "ghost")

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
}

func TestGetEmergencyContacts_Ordered(t *testing.T) {
	s, mock := newServiceWithMock(t)
	rows := sqlmock.NewRows([]string{"id", "user_id", "contact_name", "contact_email"}).
		AddRow(1, "user_U", "Cara", "c1@example.com").
		AddRow(2, "user_U", "Dan", "c2@example.com")
	mock.ExpectQuery(`SELECT \* FROM "emergency_contacts" WHERE user_id = \$1 ORDER BY id`).
		WithArgs("user_U").
		WillReturnRows(rows)

	contacts, err := s.GetEmergencyContacts(context.Background(), "user_U")

	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "c1@example.com", contacts[0].ContactEmail)
	assert.Equal(t, "Dan", contacts[1].ContactName)
}

func TestFindPeerCandidateIDs_BindsStatusArray(t *testing.T) {
	s, mock := newServiceWithMock(t)
	mock.ExpectQuery(`SELECT "user_id" FROM "profiles" WHERE goal_category = \$1 AND status = ANY\(\$2\) AND user_id <> \$3 ORDER BY user_id`).
		WithArgs("health", `{"active","SOS"}`, "user_U").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user_V").AddRow("user_X"))

	ids, err := s.FindPeerCandidateIDs(context.Background(), models.GoalHealth,
		[]models.Status{models.StatusActive, models.StatusSOS}, "user_U")

	require.NoError(t, err)
	assert.Equal(t, []string{"user_V", "user_X"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeerMatchExists_ChecksBothOrders(t *testing.T) {
	s, mock := newServiceWithMock(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "peer_matches" WHERE .*user_id_1 = \$1 AND user_id_2 = \$2.* OR .*user_id_1 = \$3 AND user_id_2 = \$4`).
		WithArgs("user_U", "user_V", "user_V", "user_U").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := s.PeerMatchExists(context.Background(), "user_U", "user_V")

	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPeerMatchExists_None(t *testing.T) {
	s, mock := newServiceWithMock(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "peer_matches"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := s.PeerMatchExists(context.Background(), "user_U", "user_V")

	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSavePeerMatch_GeneratesID(t *testing.T) {
	s, mock := newServiceWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "peer_matches"`).
		WithArgs(sqlmock.AnyArg(), "user_U", "user_V", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	match := &models.PeerMatch{UserID1: "user_U", UserID2: "user_V"}
	err := s.SavePeerMatch(context.Background(), match)

	require.NoError(t, err)
	assert.NotEmpty(t, match.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOperations_NoopWithoutRedis(t *testing.T) {
	s, _ := newServiceWithMock(t)
	ctx := context.Background()

	assert.NoError(t, s.PublishEscalation(ctx, models.EscalationEvent{UserID: "user_U"}))
	assert.NoError(t, s.SaveRunSummary(ctx, models.RunSummary{Examined: 1}))

	last, err := s.GetLastRunSummary(ctx)
	assert.NoError(t, err)
	assert.Nil(t, last)
}
