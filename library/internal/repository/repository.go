package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -destination=mocks/mock.go -package=mocks . Repository

type AuthorRepository interface {
	CreateAuthor(ctx context.Context, req model.AuthorRequest) (model.Author, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int) (model.Author, error)
	UpdateAuthor(ctx context.Context, id int, patch model.AuthorPatch) (model.Author, error)
	DeleteAuthor(ctx context.Context, id int) (model.Author, error)
}

type BookRepository interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	UpdateBook(ctx context.Context, id int, patch model.BookPatch) (model.Book, error)
	DeleteBook(ctx context.Context, id int) (model.Book, error)
	DecrementCopy(ctx context.Context, bookID int) error
	IncrementCopy(ctx context.Context, bookID int) error
}

type BorrowRepository interface {
	CreateBorrow(ctx context.Context, bookID int, borrowerName string, borrowDate model.Date) (model.Borrow, error)
	ListBorrows(ctx context.Context) ([]model.Borrow, error)
	GetBorrow(ctx context.Context, id int) (model.Borrow, error)
	ReturnBorrow(ctx context.Context, id int, returnDate string) (model.Borrow, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListEmails(ctx context.Context) ([]string, error)
}

type Repository interface {
	AuthorRepository
	BookRepository
	BorrowRepository
	UserRepository
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is either the pool or an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db  DB
	log *zap.Logger
}

func NewRepository(db DB, log *zap.Logger) (*repository, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	authorTableName = `author`
	bookTableName   = `book`
	borrowTableName = `borrow`
	userTableName   = `"user"`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// withTx runs fn in one transaction, rolled back when fn fails.
func (r *repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Error("rollback", zap.Error(rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err) == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == pgerrcode.ForeignKeyViolation
}
