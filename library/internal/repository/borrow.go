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

var borrowColumns = []string{"id", "book_id", "borrower_name", "borrow_date", "return_date"}

func scanBorrow(row pgx.Row) (model.Borrow, error) {
	var (
		b          model.Borrow
		borrowDate time.Time
		returnDate *time.Time
	)
	if err := row.Scan(&b.ID, &b.BookID, &b.BorrowerName, &borrowDate, &returnDate); err != nil {
		return model.Borrow{}, err
	}
	b.BorrowDate = *model.DateFromTime(&borrowDate)
	b.ReturnDate = model.DateFromTime(returnDate)
	return b, nil
}

// CreateBorrow takes a copy off the shelf and records the borrow in one
// transaction, so a failed insert puts the copy back.
func (r *repository) CreateBorrow(ctx context.Context, bookID int, borrowerName string, borrowDate model.Date) (model.Borrow, error) {
	var borrow model.Borrow
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := r.decrementCopy(ctx, tx, bookID); err != nil {
			return err
		}

		query, args, err := qb.Insert(borrowTableName).
			Columns("book_id", "borrower_name", "borrow_date").
			Values(bookID, borrowerName, borrowDate.Time).
			Suffix("RETURNING id, book_id, borrower_name, borrow_date, return_date").
			ToSql()
		if err != nil {
			return err
		}
		if borrow, err = scanBorrow(tx.QueryRow(ctx, query, args...)); err != nil {
			return errors.Wrap(err, "CreateBorrow")
		}
		return nil
	})
	if err != nil {
		return model.Borrow{}, err
	}
	r.log.Debug("borrow created", zap.Int("id", borrow.ID), zap.Int("book_id", bookID))
	return borrow, nil
}

func (r *repository) ListBorrows(ctx context.Context) ([]model.Borrow, error) {
	query, args, err := qb.Select(borrowColumns...).
		From(borrowTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListBorrows")
	}
	borrows, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Borrow, error) {
		return scanBorrow(row)
	})
	if err != nil {
		return nil, errors.Wrap(err, "ListBorrows")
	}
	return borrows, nil
}

func (r *repository) GetBorrow(ctx context.Context, id int) (model.Borrow, error) {
	query, args, err := qb.Select(borrowColumns...).
		From(borrowTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Borrow{}, err
	}

	borrow, err := scanBorrow(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Borrow{}, errors.Wrapf(errs.ErrNotFound, "borrow %d", id)
		}
		return model.Borrow{}, errors.Wrap(err, "GetBorrow")
	}
	return borrow, nil
}

// ReturnBorrow closes an open borrow and puts the copy back. A borrow is
// returned at most once.
func (r *repository) ReturnBorrow(ctx context.Context, id int, returnDate string) (model.Borrow, error) {
	var borrow model.Borrow
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		query, args, err := qb.Select(borrowColumns...).
			From(borrowTableName).
			Where(sq.Eq{"id": id}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return err
		}
		if borrow, err = scanBorrow(tx.QueryRow(ctx, query, args...)); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errors.Wrapf(errs.ErrNotFound, "borrow %d", id)
			}
			return errors.Wrap(err, "ReturnBorrow")
		}

		date, err := model.ParseDate(returnDate)
		if err != nil {
			return err
		}
		if !borrow.IsOpen() {
			return errors.Wrapf(errs.ErrConflict, "borrow %d already returned on %s", id, borrow.ReturnDate)
		}

		query, args, err = qb.Update(borrowTableName).
			Set("return_date", date.Time).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return errors.Wrap(err, "ReturnBorrow")
		}
		if err = r.addCopies(ctx, tx, borrow.BookID, 1); err != nil {
			return err
		}
		borrow.ReturnDate = &date
		return nil
	})
	if err != nil {
		return model.Borrow{}, err
	}
	return borrow, nil
}
