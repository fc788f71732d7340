package services

import (
	"context"
	"errors"

	"paylink_backend/internal/appErrors"
	"paylink_backend/internal/auth"
	"paylink_backend/internal/models"
	"paylink_backend/internal/repositories"
)

type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(ctx context.Context, email, password, displayName string) (*models.User, string, error) {
	if len(password) < 6 {
		return nil, "", appErrors.ErrWeakPassword
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, "", appErrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", appErrors.DatabaseError(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", appErrors.InternalError(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	user.ID = newID()

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", appErrors.DatabaseError(err)
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", appErrors.InternalError(err)
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", appErrors.ErrInvalidCredentials
		}
		return nil, "", appErrors.DatabaseError(err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", appErrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", appErrors.InternalError(err)
	}
	return user, token, nil
}
