package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
)

const newBookSubject = "New Book Added"

func (s *Service) CreateAuthor(ctx context.Context, req model.AuthorRequest) (model.Author, error) {
	return s.repo.CreateAuthor(ctx, req)
}

func (s *Service) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *Service) GetAuthor(ctx context.Context, id int) (model.Author, error) {
	return s.repo.GetAuthor(ctx, id)
}

func (s *Service) UpdateAuthor(ctx context.Context, id int, patch model.AuthorPatch) (model.Author, error) {
	return s.repo.UpdateAuthor(ctx, id, patch)
}

func (s *Service) DeleteAuthor(ctx context.Context, id int) (model.Author, error) {
	return s.repo.DeleteAuthor(ctx, id)
}

// CreateBook adds the book, or restocks an identical one, and tells every
// registered user about it.
func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Book{}, errors.Wrap(errs.ErrInvalidInput, "title is required")
	}
	book, err := s.repo.CreateBook(ctx, req)
	if err != nil {
		return model.Book{}, err
	}
	s.broadcastNewBook(ctx, book.Title)
	return book, nil
}

func (s *Service) broadcastNewBook(ctx context.Context, title string) {
	emails, err := s.repo.ListEmails(ctx)
	if err != nil {
		s.log.Warn("new book notification skipped", zap.String("title", title), zap.Error(err))
		return
	}
	body := fmt.Sprintf("The book '%s' has been added to the library.", title)
	for _, email := range emails {
		s.notifier.Enqueue(email, newBookSubject, body)
	}
}

func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id int, patch model.BookPatch) (model.Book, error) {
	return s.repo.UpdateBook(ctx, id, patch)
}

func (s *Service) DeleteBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.DeleteBook(ctx, id)
}
