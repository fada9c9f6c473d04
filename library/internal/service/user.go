package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/pkg/auth"
)

const (
	welcomeSubject = "Welcome!"
	welcomeBody    = "Thank you for registering!"
	tokenType      = "bearer"
)

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return model.User{}, errors.Wrap(errs.ErrInvalidInput, "username, email and password are required")
	}
	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return model.User{}, errors.Wrap(errs.ErrInvalidInput, err.Error())
		}
		return model.User{}, err
	}

	user, err := s.repo.CreateUser(ctx, model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	})
	if err != nil {
		return model.User{}, err
	}
	s.notifier.Enqueue(user.Email, welcomeSubject, welcomeBody)
	return user, nil
}

// Login answers ErrUnauthorized for both an unknown user and a wrong password.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errs.ErrUnauthorized
		}
		return model.AuthResponse{}, err
	}
	if !s.passwords.Verify(user.Password, req.Password) {
		return model.AuthResponse{}, errs.ErrUnauthorized
	}

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}
