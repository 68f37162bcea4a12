package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/models/repositories"
)

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	op := "repository.FindUserByEmail()"

	var user repositories.User
	err := r.DB.GetContext(ctx, &user,
		`SELECT id, email, password, name, is_active, created_at, updated_at
		 FROM users WHERE email = $1 ORDER BY id LIMIT 1`,
		email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.User{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.Password,
		Name:         user.Name,
		Active:       user.IsActive,
		CreatedAt:    user.CreatedAt,
	}, nil
}

func (r *Repository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	op := "repository.CreateUser()"

	err := r.DB.QueryRowxContext(ctx,
		`INSERT INTO users (email, password, name, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 RETURNING id, is_active, created_at`,
		user.Email, user.PasswordHash, user.Name,
	).Scan(&user.ID, &user.Active, &user.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
