package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
)

func (r *repository) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	query, args, err := qb.Insert(userTableName).
		Columns("username", "email", "password").
		Values(user.Username, user.Email, user.Password).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	if err = r.db.QueryRow(ctx, query, args...).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return model.User{}, errors.Wrapf(errs.ErrConflict, "username %q is taken", user.Username)
		}
		return model.User{}, errors.Wrap(err, "CreateUser")
	}
	return user, nil
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	query, args, err := qb.Select("id", "username", "email", "password").
		From(userTableName).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var u model.User
	if err = r.db.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Username, &u.Email, &u.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errors.Wrapf(errs.ErrNotFound, "user %q", username)
		}
		return model.User{}, errors.Wrap(err, "GetUserByUsername")
	}
	return u, nil
}

func (r *repository) ListEmails(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("email").
		From(userTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListEmails")
	}
	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "ListEmails")
	}
	return emails, nil
}
