package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
)

func selectBooks() sq.SelectBuilder {
	return qb.Select(
		"b.id", "b.title", "b.description", "b.available_copies",
		"a.id", "a.first_name", "a.last_name", "a.birth_date").
		From(bookTableName + " b").
		LeftJoin(authorTableName + " a ON a.id = b.author_id")
}

func scanBook(row pgx.Row) (model.Book, error) {
	var (
		b         model.Book
		authorID  *int
		firstName *string
		lastName  *string
		birthDate *time.Time
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Description, &b.AvailableCopies,
		&authorID, &firstName, &lastName, &birthDate); err != nil {
		return model.Book{}, err
	}
	if authorID != nil {
		b.Author = &model.Author{
			ID:        *authorID,
			FirstName: firstName,
			LastName:  lastName,
			BirthDate: model.DateFromTime(birthDate),
		}
	}
	return b, nil
}

// CreateBook treats a book with the same title and author as a restock:
// its copies grow by the requested amount instead of inserting a duplicate.
func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	if req.Copies() < 0 {
		return model.Book{}, errors.Wrap(errs.ErrInvalidInput, "available_copies must not be negative")
	}

	var book model.Book
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var authorID *int
		if req.Author != nil {
			author, err := r.findOrCreateAuthor(ctx, tx, *req.Author)
			if err != nil {
				return err
			}
			authorID = &author.ID
		}

		id, err := r.findBookID(ctx, tx, req.Title, authorID)
		switch {
		case err == nil:
			if err = r.addCopies(ctx, tx, id, req.Copies()); err != nil {
				return err
			}
			r.log.Debug("book restocked", zap.Int("id", id), zap.Int("copies", req.Copies()))
		case errors.Is(err, errs.ErrNotFound):
			if id, err = r.insertBook(ctx, tx, req, authorID); err != nil {
				return err
			}
			r.log.Debug("book created", zap.Int("id", id))
		default:
			return err
		}

		book, err = r.getBook(ctx, tx, id)
		return err
	})
	return book, err
}

func (r *repository) findBookID(ctx context.Context, q querier, title string, authorID *int) (int, error) {
	query, args, err := qb.Select("id").
		From(bookTableName).
		Where(sq.Eq{"title": title}).
		Where(sq.Expr("author_id IS NOT DISTINCT FROM ?", authorID)).
		OrderBy("id").
		Limit(1).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int
	if err = q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, errors.Wrap(err, "findBookID")
	}
	return id, nil
}

func (r *repository) insertBook(ctx context.Context, q querier, req model.CreateBookRequest, authorID *int) (int, error) {
	query, args, err := qb.Insert(bookTableName).
		Columns("title", "description", "available_copies", "author_id").
		Values(req.Title, req.Description, req.Copies(), authorID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int
	if err = q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insertBook")
	}
	return id, nil
}

func (r *repository) ListBooks(ctx context.Context) ([]model.Book, error) {
	query, args, err := selectBooks().OrderBy("b.id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListBooks")
	}
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, errors.Wrap(err, "ListBooks")
	}
	return books, nil
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	return r.getBook(ctx, r.db, id)
}

func (r *repository) getBook(ctx context.Context, q querier, id int) (model.Book, error) {
	query, args, err := selectBooks().Where(sq.Eq{"b.id": id}).ToSql()
	if err != nil {
		return model.Book{}, err
	}

	book, err := scanBook(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errors.Wrapf(errs.ErrNotFound, "book %d", id)
		}
		return model.Book{}, errors.Wrap(err, "getBook")
	}
	return book, nil
}

// UpdateBook overwrites the present fields. An author patch with the id of an
// existing author edits that author in place, any other author patch inserts
// a new author for the book.
func (r *repository) UpdateBook(ctx context.Context, id int, patch model.BookPatch) (model.Book, error) {
	if patch.AvailableCopies != nil && *patch.AvailableCopies < 0 {
		return model.Book{}, errors.Wrap(errs.ErrInvalidInput, "available_copies must not be negative")
	}
	if patch.Title != nil && *patch.Title == "" {
		return model.Book{}, errors.Wrap(errs.ErrInvalidInput, "title must not be empty")
	}

	var book model.Book
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := r.lockBook(ctx, tx, id); err != nil {
			return err
		}

		set := make(map[string]interface{}, 4)
		if patch.Title != nil {
			set["title"] = *patch.Title
		}
		if patch.Description != nil {
			set["description"] = *patch.Description
		}
		if patch.AvailableCopies != nil {
			set["available_copies"] = *patch.AvailableCopies
		}
		if patch.Author != nil {
			author, err := r.resolveBookAuthor(ctx, tx, *patch.Author)
			if err != nil {
				return err
			}
			set["author_id"] = author.ID
		}

		if len(set) > 0 {
			query, args, err := qb.Update(bookTableName).
				SetMap(set).
				Where(sq.Eq{"id": id}).
				ToSql()
			if err != nil {
				return err
			}
			if _, err = tx.Exec(ctx, query, args...); err != nil {
				return errors.Wrap(err, "UpdateBook")
			}
		}

		var err error
		book, err = r.getBook(ctx, tx, id)
		return err
	})
	return book, err
}

func (r *repository) resolveBookAuthor(ctx context.Context, q querier, patch model.BookAuthorPatch) (model.Author, error) {
	if patch.ID != nil {
		author, err := r.updateAuthor(ctx, q, *patch.ID, patch.AuthorPatch)
		if err == nil {
			return author, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return model.Author{}, err
		}
	}
	return r.insertAuthor(ctx, q, patch.AsRequest())
}

func (r *repository) lockBook(ctx context.Context, q querier, id int) error {
	query, args, err := qb.Select("id").
		From(bookTableName).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return err
	}

	var locked int
	if err = q.QueryRow(ctx, query, args...).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.Wrapf(errs.ErrNotFound, "book %d", id)
		}
		return errors.Wrap(err, "lockBook")
	}
	return nil
}

// DeleteBook refuses books that still have borrow records.
func (r *repository) DeleteBook(ctx context.Context, id int) (model.Book, error) {
	var book model.Book
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		if book, err = r.getBook(ctx, tx, id); err != nil {
			return err
		}

		query, args, err := qb.Delete(bookTableName).Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, query, args...); err != nil {
			if isForeignKeyViolation(err) {
				return errors.Wrapf(errs.ErrConflict, "book %d has borrow records", id)
			}
			return errors.Wrap(err, "DeleteBook")
		}
		return nil
	})
	return book, err
}

func (r *repository) DecrementCopy(ctx context.Context, bookID int) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		return r.decrementCopy(ctx, tx, bookID)
	})
}

// decrementCopy is the only place a copy leaves the shelf. The row lock
// serializes concurrent borrows of the same book.
func (r *repository) decrementCopy(ctx context.Context, q querier, bookID int) error {
	query, args, err := qb.Select("available_copies").
		From(bookTableName).
		Where(sq.Eq{"id": bookID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return err
	}

	var available int
	if err = q.QueryRow(ctx, query, args...).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.Wrapf(errs.ErrNotFound, "book %d", bookID)
		}
		return errors.Wrap(err, "decrementCopy")
	}
	if available <= 0 {
		return errors.Wrapf(errs.ErrOutOfStock, "book %d", bookID)
	}

	query, args, err = qb.Update(bookTableName).
		Set("available_copies", sq.Expr("available_copies - 1")).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = q.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(err, "decrementCopy")
	}
	return nil
}

func (r *repository) IncrementCopy(ctx context.Context, bookID int) error {
	return r.addCopies(ctx, r.db, bookID, 1)
}

func (r *repository) addCopies(ctx context.Context, q querier, bookID, n int) error {
	query, args, err := qb.Update(bookTableName).
		Set("available_copies", sq.Expr("available_copies + ?", n)).
		Where(sq.Eq{"id": bookID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "addCopies")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errs.ErrNotFound, "book %d", bookID)
	}
	return nil
}
