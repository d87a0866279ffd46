package alarm

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alarmo/alarmo/internal/test_utils"
)

var db *sql.DB

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	repository := NewRepository(db)
	userId := uuid.New()
	_, err := db.ExecContext(ctx, `INSERT INTO app_user (id, username) VALUES ($1, $2)`,
		userId, "user_"+userId.String())
	require.NoError(t, err)
	return ctx, repository, userId
}

func TestRepositoryImpl_StoreAndFindByUser(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	later := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

	// when
	second, err := repo.Store(ctx, Alarm{UserID: userId, Name: "Standup [e2]", TriggerTime: later, Enabled: true})
	require.NoError(t, err)
	first, err := repo.Store(ctx, Alarm{UserID: userId, Name: "Dentist [e1]", TriggerTime: earlier, Enabled: true})
	require.NoError(t, err)

	// then
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, uuid.Nil, second.ID)

	alarms, err := repo.FindByUser(ctx, userId)
	require.NoError(t, err)
	require.Len(t, alarms, 2)

	// ordered by trigger time
	assert.Equal(t, first.ID, alarms[0].ID)
	assert.Equal(t, "Dentist [e1]", alarms[0].Name)
	assert.True(t, earlier.Equal(alarms[0].TriggerTime))
	assert.True(t, alarms[0].Enabled)
	assert.Equal(t, second.ID, alarms[1].ID)
}

func TestRepositoryImpl_FindByUser_ShouldNotReturnOtherUsersAlarms(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	_, otherRepo, otherUserId := setupTestRepository(t)
	trigger := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	_, err := otherRepo.Store(ctx, Alarm{UserID: otherUserId, Name: "Other [x]", TriggerTime: trigger, Enabled: true})
	require.NoError(t, err)

	// when
	alarms, err := repo.FindByUser(ctx, userId)

	// then
	require.NoError(t, err)
	assert.Empty(t, alarms)
}

func TestRepositoryImpl_Update(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	trigger := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	stored, err := repo.Store(ctx, Alarm{UserID: userId, Name: "Dentist [e1]", TriggerTime: trigger, Enabled: true})
	require.NoError(t, err)

	// when
	moved := trigger.Add(2 * time.Hour)
	stored.Name = "Dentist moved [e1]"
	stored.TriggerTime = moved
	stored.Enabled = false
	err = repo.Update(ctx, stored)

	// then
	require.NoError(t, err)
	alarms, err := repo.FindByUser(ctx, userId)
	require.NoError(t, err)
	require.Len(t, alarms, 1)
	assert.Equal(t, "Dentist moved [e1]", alarms[0].Name)
	assert.True(t, moved.Equal(alarms[0].TriggerTime))
	assert.False(t, alarms[0].Enabled)
}

func TestRepositoryImpl_Update_ShouldFailWhenAlarmDoesNotExist(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)

	// when
	err := repo.Update(ctx, Alarm{
		ID:          uuid.New(),
		UserID:      userId,
		Name:        "Ghost",
		TriggerTime: time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC),
	})

	// then
	assert.Error(t, err)
}

func TestRepositoryImpl_Update_ShouldFailForAnotherUsersAlarm(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	_, _, otherUserId := setupTestRepository(t)
	trigger := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	stored, err := repo.Store(ctx, Alarm{UserID: userId, Name: "Dentist [e1]", TriggerTime: trigger, Enabled: true})
	require.NoError(t, err)

	// when
	stored.UserID = otherUserId
	err = repo.Update(ctx, stored)

	// then
	assert.Error(t, err)
}
