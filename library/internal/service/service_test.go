package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/model"
	repo_mocks "github.com/Astemirdum/library-management/library/internal/repository/mocks"
	"github.com/Astemirdum/library-management/library/internal/service"
	notify_mocks "github.com/Astemirdum/library-management/library/internal/service/mocks"
	"github.com/Astemirdum/library-management/pkg/auth"
)

type deps struct {
	repo     *repo_mocks.MockRepository
	notifier *notify_mocks.MockNotifier
}

func newService(t *testing.T) (*service.Service, deps) {
	t.Helper()
	c := gomock.NewController(t)
	d := deps{
		repo:     repo_mocks.NewMockRepository(c),
		notifier: notify_mocks.NewMockNotifier(c),
	}
	svc := service.NewService(d.repo, d.notifier,
		auth.NewPasswordService(bcrypt.MinCost),
		auth.NewTokenService("secret", time.Hour),
		zap.NewNop(),
	)
	return svc, d
}

func TestService_CreateBook(t *testing.T) {
	t.Parallel()
	req := model.CreateBookRequest{Title: "War and Peace"}
	book := model.Book{ID: 1, Title: "War and Peace", AvailableCopies: 1}

	tests := []struct {
		name         string
		req          model.CreateBookRequest
		mockBehavior func(d deps)
		want         model.Book
		wantErr      error
	}{
		{
			name: "ok. every user is notified",
			req:  req,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().CreateBook(gomock.Any(), req).Return(book, nil)
				d.repo.EXPECT().ListEmails(gomock.Any()).Return([]string{"a@example.com", "b@example.com"}, nil)
				body := "The book 'War and Peace' has been added to the library."
				d.notifier.EXPECT().Enqueue("a@example.com", "New Book Added", body)
				d.notifier.EXPECT().Enqueue("b@example.com", "New Book Added", body)
			},
			want: book,
		},
		{
			name: "ok. recipients lookup failure does not fail the create",
			req:  req,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().CreateBook(gomock.Any(), req).Return(book, nil)
				d.repo.EXPECT().ListEmails(gomock.Any()).Return(nil, errors.New("db internal"))
			},
			want: book,
		},
		{
			name:         "err. empty title",
			req:          model.CreateBookRequest{Title: "  "},
			mockBehavior: func(d deps) {},
			wantErr:      errs.ErrInvalidInput,
		},
		{
			name: "err. repository",
			req:  req,
			mockBehavior: func(d deps) {
				d.repo.EXPECT().CreateBook(gomock.Any(), req).Return(model.Book{}, errs.ErrInvalidInput)
			},
			wantErr: errs.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, d := newService(t)
			tt.mockBehavior(d)

			got, err := svc.CreateBook(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestService_CreateBorrow(t *testing.T) {
	t.Parallel()
	date := model.NewDate(2024, time.March, 1)

	tests := []struct {
		name         string
		req          model.CreateBorrowRequest
		mockBehavior func(d deps)
		wantErr      error
	}{
		{
			name: "ok",
			req:  model.CreateBorrowRequest{BookID: 7, BorrowerName: " Anna ", BorrowDate: "2024-03-01"},
			mockBehavior: func(d deps) {
				d.repo.EXPECT().CreateBorrow(gomock.Any(), 7, "Anna", date).
					Return(model.Borrow{ID: 1, BookID: 7, BorrowerName: "Anna", BorrowDate: date}, nil)
			},
		},
		{
			name:         "err. missing book",
			req:          model.CreateBorrowRequest{BorrowerName: "Anna", BorrowDate: "2024-03-01"},
			mockBehavior: func(d deps) {},
			wantErr:      errs.ErrInvalidInput,
		},
		{
			name:         "err. missing borrower",
			req:          model.CreateBorrowRequest{BookID: 7, BorrowDate: "2024-03-01"},
			mockBehavior: func(d deps) {},
			wantErr:      errs.ErrInvalidInput,
		},
		{
			name:         "err. missing date",
			req:          model.CreateBorrowRequest{BookID: 7, BorrowerName: "Anna"},
			mockBehavior: func(d deps) {},
			wantErr:      errs.ErrInvalidInput,
		},
		{
			name:         "err. bad date",
			req:          model.CreateBorrowRequest{BookID: 7, BorrowerName: "Anna", BorrowDate: "01-03-2024"},
			mockBehavior: func(d deps) {},
			wantErr:      errs.ErrInvalidInput,
		},
		{
			name: "err. out of stock",
			req:  model.CreateBorrowRequest{BookID: 7, BorrowerName: "Anna", BorrowDate: "2024-03-01"},
			mockBehavior: func(d deps) {
				d.repo.EXPECT().CreateBorrow(gomock.Any(), 7, "Anna", date).
					Return(model.Borrow{}, errors.Wrap(errs.ErrOutOfStock, "book 7"))
			},
			wantErr: errs.ErrOutOfStock,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, d := newService(t)
			tt.mockBehavior(d)

			got, err := svc.CreateBorrow(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, 1, got.ID)
			require.True(t, got.IsOpen())
		})
	}
}

func TestService_ReturnBorrow(t *testing.T) {
	t.Parallel()
	svc, d := newService(t)
	d.repo.EXPECT().ReturnBorrow(gomock.Any(), 1, "2024-03-15").
		Return(model.Borrow{}, errors.Wrap(errs.ErrConflict, "borrow 1 already returned"))

	_, err := svc.ReturnBorrow(context.Background(), 1, "2024-03-15")
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestService_Register(t *testing.T) {
	t.Parallel()
	t.Run("ok. password is hashed and welcome sent", func(t *testing.T) {
		t.Parallel()
		svc, d := newService(t)
		d.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
				require.Equal(t, "leo", u.Username)
				require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))
				u.ID = 1
				return u, nil
			})
		d.notifier.EXPECT().Enqueue("leo@example.com", "Welcome!", "Thank you for registering!")

		got, err := svc.Register(context.Background(), model.RegisterRequest{
			Username: "leo", Email: "leo@example.com", Password: "secret",
		})
		require.NoError(t, err)
		require.Equal(t, 1, got.ID)
	})
	t.Run("err. taken username sends nothing", func(t *testing.T) {
		t.Parallel()
		svc, d := newService(t)
		d.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(model.User{}, errs.ErrConflict)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Username: "leo", Email: "leo@example.com", Password: "secret",
		})
		require.ErrorIs(t, err, errs.ErrConflict)
	})
	t.Run("err. password too long", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Username: "leo", Email: "leo@example.com", Password: string(make([]byte, 73)),
		})
		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{ID: 1, Username: "leo", Email: "leo@example.com", Password: string(hash)}

	tests := []struct {
		name         string
		req          model.LoginRequest
		mockBehavior func(d deps)
		wantErr      error
	}{
		{
			name: "ok",
			req:  model.LoginRequest{Username: "leo", Password: "secret"},
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetUserByUsername(gomock.Any(), "leo").Return(user, nil)
			},
		},
		{
			name: "err. wrong password",
			req:  model.LoginRequest{Username: "leo", Password: "Secret"},
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetUserByUsername(gomock.Any(), "leo").Return(user, nil)
			},
			wantErr: errs.ErrUnauthorized,
		},
		{
			name: "err. unknown user",
			req:  model.LoginRequest{Username: "anna", Password: "secret"},
			mockBehavior: func(d deps) {
				d.repo.EXPECT().GetUserByUsername(gomock.Any(), "anna").
					Return(model.User{}, errors.Wrap(errs.ErrNotFound, "user"))
			},
			wantErr: errs.ErrUnauthorized,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, d := newService(t)
			tt.mockBehavior(d)

			got, err := svc.Login(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "bearer", got.TokenType)
			require.EqualValues(t, 3600, got.ExpiresIn)

			sub, err := auth.NewTokenService("secret", time.Hour).Parse(got.AccessToken)
			require.NoError(t, err)
			require.Equal(t, "leo", sub)
		})
	}
}

func TestService_UpdateBook(t *testing.T) {
	t.Parallel()
	svc, d := newService(t)
	patch := model.BookPatch{AvailableCopies: lo.ToPtr(4)}
	d.repo.EXPECT().UpdateBook(gomock.Any(), 3, patch).Return(model.Book{ID: 3, AvailableCopies: 4}, nil)

	got, err := svc.UpdateBook(context.Background(), 3, patch)
	require.NoError(t, err)
	require.Equal(t, 4, got.AvailableCopies)
}
