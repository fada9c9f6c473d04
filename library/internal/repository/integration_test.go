package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	"github.com/Astemirdum/library-management/library/internal/repository"
	"github.com/Astemirdum/library-management/library/migrations"
	"github.com/Astemirdum/library-management/pkg/postgres"
)

// newTestDB connects to LIBRARY_TEST_DSN, migrates and empties the schema.
func newTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("LIBRARY_TEST_DSN")
	if dsn == "" {
		t.Skip("LIBRARY_TEST_DSN is not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(pool, migrations.MigrationFiles))
	_, err = pool.Exec(ctx, `TRUNCATE borrow, book, author, "user" RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestRepository_TolstoyScenario(t *testing.T) {
	pool := newTestDB(t)
	ctx := context.Background()
	repo, err := repository.NewRepository(pool, zap.NewNop())
	require.NoError(t, err)

	birth := model.NewDate(1828, time.September, 9)
	tolstoy := model.AuthorRequest{FirstName: lo.ToPtr("Leo"), LastName: lo.ToPtr("Tolstoy"), BirthDate: &birth}

	first, err := repo.CreateAuthor(ctx, tolstoy)
	require.NoError(t, err)
	second, err := repo.CreateAuthor(ctx, tolstoy)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	book, err := repo.CreateBook(ctx, model.CreateBookRequest{Title: "War and Peace", Author: &tolstoy})
	require.NoError(t, err)
	require.Equal(t, 1, book.AvailableCopies)
	require.Equal(t, first.ID, book.Author.ID)

	restocked, err := repo.CreateBook(ctx, model.CreateBookRequest{
		Title: "War and Peace", AvailableCopies: lo.ToPtr(2), Author: &tolstoy,
	})
	require.NoError(t, err)
	require.Equal(t, book.ID, restocked.ID)
	require.Equal(t, 3, restocked.AvailableCopies)

	day := model.NewDate(2024, time.March, 1)
	var borrows []model.Borrow
	for _, name := range []string{"Anna", "Pierre", "Natasha"} {
		b, err := repo.CreateBorrow(ctx, book.ID, name, day)
		require.NoError(t, err)
		borrows = append(borrows, b)
	}
	_, err = repo.CreateBorrow(ctx, book.ID, "Andrei", day)
	require.ErrorIs(t, err, errs.ErrOutOfStock)

	all, err := repo.ListBorrows(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	got, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.AvailableCopies)

	returned, err := repo.ReturnBorrow(ctx, borrows[0].ID, "2024-03-15")
	require.NoError(t, err)
	require.Equal(t, "2024-03-15", returned.ReturnDate.String())

	_, err = repo.ReturnBorrow(ctx, borrows[0].ID, "2024-03-16")
	require.ErrorIs(t, err, errs.ErrConflict)

	got, err = repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.AvailableCopies)

	_, err = repo.DeleteBook(ctx, book.ID)
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = repo.DeleteAuthor(ctx, first.ID)
	require.NoError(t, err)
	got, err = repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Nil(t, got.Author)
}

func TestRepository_ConcurrentBorrowOfLastCopy(t *testing.T) {
	pool := newTestDB(t)
	ctx := context.Background()
	repo, err := repository.NewRepository(pool, zap.NewNop())
	require.NoError(t, err)

	book, err := repo.CreateBook(ctx, model.CreateBookRequest{Title: "Beowulf"})
	require.NoError(t, err)

	const borrowers = 8
	results := make([]error, borrowers)
	var g errgroup.Group
	for i := 0; i < borrowers; i++ {
		i := i
		g.Go(func() error {
			_, results[i] = repo.CreateBorrow(ctx, book.ID, "reader", model.NewDate(2024, time.March, 1))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, outOfStock int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrOutOfStock):
			outOfStock++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, borrowers-1, outOfStock)

	got, err := repo.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.AvailableCopies)
}
