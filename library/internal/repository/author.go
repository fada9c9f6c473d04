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

var authorColumns = []string{"id", "first_name", "last_name", "birth_date"}

func scanAuthor(row pgx.Row) (model.Author, error) {
	var (
		a         model.Author
		birthDate *time.Time
	)
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &birthDate); err != nil {
		return model.Author{}, err
	}
	a.BirthDate = model.DateFromTime(birthDate)
	return a, nil
}

func (r *repository) CreateAuthor(ctx context.Context, req model.AuthorRequest) (model.Author, error) {
	var author model.Author
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		author, err = r.findOrCreateAuthor(ctx, tx, req)
		return err
	})
	return author, err
}

// findOrCreateAuthor returns the author equal to req on all three fields,
// null matching null, inserting one when there is none.
func (r *repository) findOrCreateAuthor(ctx context.Context, q querier, req model.AuthorRequest) (model.Author, error) {
	author, err := r.findAuthor(ctx, q, req)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return model.Author{}, err
	}
	return r.insertAuthor(ctx, q, req)
}

func (r *repository) findAuthor(ctx context.Context, q querier, req model.AuthorRequest) (model.Author, error) {
	query, args, err := qb.Select(authorColumns...).
		From(authorTableName).
		Where(sq.Expr("first_name IS NOT DISTINCT FROM ?", req.FirstName)).
		Where(sq.Expr("last_name IS NOT DISTINCT FROM ?", req.LastName)).
		Where(sq.Expr("birth_date IS NOT DISTINCT FROM ?", req.BirthDate.TimePtr())).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	author, err := scanAuthor(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Author{}, errs.ErrNotFound
		}
		return model.Author{}, errors.Wrap(err, "findAuthor")
	}
	return author, nil
}

func (r *repository) insertAuthor(ctx context.Context, q querier, req model.AuthorRequest) (model.Author, error) {
	query, args, err := qb.Insert(authorTableName).
		Columns("first_name", "last_name", "birth_date").
		Values(req.FirstName, req.LastName, req.BirthDate.TimePtr()).
		Suffix("RETURNING id, first_name, last_name, birth_date").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	author, err := scanAuthor(q.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Author{}, errors.Wrap(err, "insertAuthor")
	}
	r.log.Debug("author created", zap.Int("id", author.ID))
	return author, nil
}

func (r *repository) ListAuthors(ctx context.Context) ([]model.Author, error) {
	query, args, err := qb.Select(authorColumns...).
		From(authorTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListAuthors")
	}
	authors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Author, error) {
		return scanAuthor(row)
	})
	if err != nil {
		return nil, errors.Wrap(err, "ListAuthors")
	}
	return authors, nil
}

func (r *repository) GetAuthor(ctx context.Context, id int) (model.Author, error) {
	return r.getAuthor(ctx, r.db, id)
}

func (r *repository) getAuthor(ctx context.Context, q querier, id int) (model.Author, error) {
	query, args, err := qb.Select(authorColumns...).
		From(authorTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	author, err := scanAuthor(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Author{}, errors.Wrapf(errs.ErrNotFound, "author %d", id)
		}
		return model.Author{}, errors.Wrap(err, "getAuthor")
	}
	return author, nil
}

func (r *repository) UpdateAuthor(ctx context.Context, id int, patch model.AuthorPatch) (model.Author, error) {
	return r.updateAuthor(ctx, r.db, id, patch)
}

// updateAuthor overwrites only the fields present in patch.
func (r *repository) updateAuthor(ctx context.Context, q querier, id int, patch model.AuthorPatch) (model.Author, error) {
	if patch.Empty() {
		return r.getAuthor(ctx, q, id)
	}

	set := make(map[string]interface{}, 3)
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.BirthDate != nil {
		set["birth_date"] = patch.BirthDate.Time
	}

	query, args, err := qb.Update(authorTableName).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, first_name, last_name, birth_date").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	author, err := scanAuthor(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Author{}, errors.Wrapf(errs.ErrNotFound, "author %d", id)
		}
		return model.Author{}, errors.Wrap(err, "updateAuthor")
	}
	return author, nil
}

// DeleteAuthor keeps the author's books, their author_id is set to null.
func (r *repository) DeleteAuthor(ctx context.Context, id int) (model.Author, error) {
	query, args, err := qb.Delete(authorTableName).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, first_name, last_name, birth_date").
		ToSql()
	if err != nil {
		return model.Author{}, err
	}

	author, err := scanAuthor(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Author{}, errors.Wrapf(errs.ErrNotFound, "author %d", id)
		}
		return model.Author{}, errors.Wrap(err, "DeleteAuthor")
	}
	return author, nil
}
