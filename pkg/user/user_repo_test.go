package user

import (
	"context"
	"database/sql"
	"os"
	"testing"

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

func TestRepositoryImpl_FindById(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewRepository(db)
	userId := uuid.New()
	_, err := db.ExecContext(ctx,
		`INSERT INTO app_user (id, username, display_name, timezone) VALUES ($1, $2, $3, $4)`,
		userId, "tester", "Test User", "Europe/Warsaw")
	require.NoError(t, err)

	// when
	found, err := repo.FindById(ctx, userId)

	// then
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, userId, found.ID)
	assert.Equal(t, "tester", found.Username)
	assert.Equal(t, "Test User", found.DisplayName)
	assert.Equal(t, "Europe/Warsaw", found.Timezone)
}

func TestRepositoryImpl_FindById_ShouldReturnNilWhenUserDoesNotExist(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewRepository(db)

	// when
	found, err := repo.FindById(ctx, uuid.New())

	// then
	require.NoError(t, err)
	assert.Nil(t, found)
}
