package service

import (
	"github.com/Astemirdum/library-management/library/internal/repository"
	"github.com/Astemirdum/library-management/pkg/auth"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

// Notifier queues an email. It never blocks and never fails the caller.
type Notifier interface {
	Enqueue(to, subject, body string)
}

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	notifier  Notifier
	passwords *auth.PasswordService
	tokens    *auth.TokenService
}

func NewService(
	repo repository.Repository,
	notifier Notifier,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	log *zap.Logger,
) *Service {
	return &Service{
		log:       log.Named("svc"),
		repo:      repo,
		notifier:  notifier,
		passwords: passwords,
		tokens:    tokens,
	}
}
