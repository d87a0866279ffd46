package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// FindById returns the user with the given id, or nil when no such
	// user exists.
	FindById(ctx context.Context, id uuid.UUID) (*User, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r RepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT id, username, display_name, timezone FROM app_user WHERE id = $1`

	var user User
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username, &user.DisplayName, &user.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not query user %s: %w", id, err)
		log.Error(err)
		return nil, err
	}
	return &user, nil
}
