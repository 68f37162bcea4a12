package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deniskrds/tixplore-app/internal/models/domain"

	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
}

type UserService struct {
	log        *slog.Logger
	repository UserRepository
	cost       int
}

func NewUserService(log *slog.Logger, repository UserRepository) *UserService {
	return &UserService{
		log:        log,
		repository: repository,
		cost:       bcrypt.DefaultCost,
	}
}

// Register создаёт пользователя. Пароль хранится только как bcrypt-хеш.
func (s *UserService) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	op := "UserService.Register()"

	_, err := s.repository.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.User{}, domain.ErrUserAlreadyExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: hash password: %w", op, err)
	}

	user, err := s.repository.CreateUser(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("op", op), slog.Int64("userId", user.ID))

	return user, nil
}

// Login проверяет пару email/пароль. Неизвестный email и неверный пароль неразличимы.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, error) {
	op := "UserService.Login()"

	user, err := s.repository.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	return user, nil
}
