package user

import (
	"context"

	"github.com/google/uuid"
)

type StubRepository struct {
	Users map[uuid.UUID]User
}

func NewStubRepository() *StubRepository {
	return &StubRepository{Users: map[uuid.UUID]User{}}
}

func (r *StubRepository) Add(user User) {
	r.Users[user.ID] = user
}

func (r *StubRepository) FindById(_ context.Context, id uuid.UUID) (*User, error) {
	user, ok := r.Users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}
