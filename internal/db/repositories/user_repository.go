package repositories

import (
	"context"

	"notionflow/server/internal/constants"
	"notionflow/server/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) InsertUser(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (
			email,
			name,
			is_active
		)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`

	return r.db.QueryRowxContext(ctx, query,
		user.Email,
		user.Name,
		user.IsActive,
	).StructScan(user)
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {

	var user entities.User

	err := r.db.QueryRowxContext(ctx, constants.GetUserByEmail, email).StructScan(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id string) (*entities.User, error) {

	var user entities.User

	err := r.db.QueryRowxContext(ctx, constants.GetUserByID, id).StructScan(&user)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
