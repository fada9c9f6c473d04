package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/internal/errs"
	"github.com/Astemirdum/library-management/library/internal/metrics"
	"github.com/Astemirdum/library-management/library/internal/model"
)

func (s *Service) CreateBorrow(ctx context.Context, req model.CreateBorrowRequest) (model.Borrow, error) {
	if req.BookID <= 0 {
		return model.Borrow{}, errors.Wrap(errs.ErrInvalidInput, "book_id is required")
	}
	name := strings.TrimSpace(req.BorrowerName)
	if name == "" {
		return model.Borrow{}, errors.Wrap(errs.ErrInvalidInput, "borrower_name is required")
	}
	if req.BorrowDate == "" {
		return model.Borrow{}, errors.Wrap(errs.ErrInvalidInput, "borrow_date is required")
	}
	borrowDate, err := model.ParseDate(req.BorrowDate)
	if err != nil {
		return model.Borrow{}, err
	}

	borrow, err := s.repo.CreateBorrow(ctx, req.BookID, name, borrowDate)
	if err != nil {
		s.reject("borrow", err)
		return model.Borrow{}, err
	}
	metrics.BorrowsCreated.Inc()
	return borrow, nil
}

func (s *Service) ListBorrows(ctx context.Context) ([]model.Borrow, error) {
	return s.repo.ListBorrows(ctx)
}

func (s *Service) GetBorrow(ctx context.Context, id int) (model.Borrow, error) {
	return s.repo.GetBorrow(ctx, id)
}

func (s *Service) ReturnBorrow(ctx context.Context, id int, returnDate string) (model.Borrow, error) {
	borrow, err := s.repo.ReturnBorrow(ctx, id, returnDate)
	if err != nil {
		s.reject("return", err)
		return model.Borrow{}, err
	}
	metrics.BorrowsReturned.Inc()
	return borrow, nil
}

func (s *Service) reject(op string, err error) {
	var reason string
	switch {
	case errors.Is(err, errs.ErrOutOfStock):
		reason = "out_of_stock"
	case errors.Is(err, errs.ErrConflict):
		reason = "already_returned"
	case errors.Is(err, errs.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, errs.ErrInvalidInput):
		reason = "invalid_input"
	default:
		s.log.Error(op, zap.Error(err))
		return
	}
	metrics.BorrowsRejected.WithLabelValues(reason).Inc()
	s.log.Debug(op+" rejected", zap.String("reason", reason), zap.Error(err))
}
