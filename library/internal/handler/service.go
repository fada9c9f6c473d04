package handler

import (
	"context"

	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	CreateAuthor(ctx context.Context, req model.AuthorRequest) (model.Author, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int) (model.Author, error)
	UpdateAuthor(ctx context.Context, id int, patch model.AuthorPatch) (model.Author, error)
	DeleteAuthor(ctx context.Context, id int) (model.Author, error)

	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	UpdateBook(ctx context.Context, id int, patch model.BookPatch) (model.Book, error)
	DeleteBook(ctx context.Context, id int) (model.Book, error)

	CreateBorrow(ctx context.Context, req model.CreateBorrowRequest) (model.Borrow, error)
	ListBorrows(ctx context.Context) ([]model.Borrow, error)
	GetBorrow(ctx context.Context, id int) (model.Borrow, error)
	ReturnBorrow(ctx context.Context, id int, returnDate string) (model.Borrow, error)

	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
}

var _ LibraryService = (*service.Service)(nil)
