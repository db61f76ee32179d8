package borrowingsvc

import (
	"context"
	"errors"
	"time"

	"libraryhub/model"
	borrowrepo "libraryhub/repository/borrowing"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNoCopies     ErrCode = "NO_COPIES"
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrNotBorrowed  ErrCode = "NOT_BORROWED"
	ErrNotOwner     ErrCode = "NOT_OWNER"
	ErrBadDueDate   ErrCode = "BAD_DUE_DATE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo = borrowrepo.Repo

type Service interface {
	// Borrow opens a loan for the caller; exactly-one-winner semantics for
	// the last copy come from the repository's atomic decrement.
	Borrow(ctx context.Context, userID, bookID int64, dueDate time.Time) (*model.Borrowing, error)

	// Return closes the caller's loan. Admins may return on behalf of any
	// user; a regular user only their own.
	Return(ctx context.Context, p model.Principal, borrowingID int64) (*model.Borrowing, error)

	ListMine(ctx context.Context, userID int64) ([]model.Borrowing, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Borrowing, error)
	ListAll(ctx context.Context) ([]model.Borrowing, error)
}

type service struct {
	r   Repo
	now func() time.Time
}

func New(r Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) Borrow(ctx context.Context, userID, bookID int64, dueDate time.Time) (*model.Borrowing, error) {
	if !dueDate.After(s.now()) {
		return nil, makeErr(ErrBadDueDate)
	}

	b, err := s.r.Borrow(ctx, userID, bookID, dueDate.UTC())
	if err != nil {
		switch {
		case errors.Is(err, borrowrepo.ErrBookNotFound):
			return nil, makeErr(ErrBookNotFound)
		case errors.Is(err, borrowrepo.ErrNoCopies):
			return nil, makeErr(ErrNoCopies)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Return(ctx context.Context, p model.Principal, borrowingID int64) (*model.Borrowing, error) {
	authorize := func(b *model.Borrowing) error {
		if b.UserID != p.UserID && !p.IsAdmin() {
			return makeErr(ErrNotOwner)
		}
		return nil
	}

	b, err := s.r.Return(ctx, borrowingID, s.now().UTC(), authorize)
	if err != nil {
		switch {
		case errors.Is(err, borrowrepo.ErrNotFound):
			return nil, makeErr(ErrNotFound)
		case errors.Is(err, borrowrepo.ErrNotBorrowed):
			return nil, makeErr(ErrNotBorrowed)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) ListMine(ctx context.Context, userID int64) ([]model.Borrowing, error) {
	return s.withStatus(s.r.ListByUser(ctx, userID))
}

func (s *service) ListByBook(ctx context.Context, bookID int64) ([]model.Borrowing, error) {
	return s.withStatus(s.r.ListByBook(ctx, bookID))
}

func (s *service) ListAll(ctx context.Context) ([]model.Borrowing, error) {
	return s.withStatus(s.r.ListAll(ctx))
}

// withStatus applies the read-time overdue derivation to every row, so a
// listing never shows a stale "borrowed" for a loan past its due date.
func (s *service) withStatus(rows []model.Borrowing, err error) ([]model.Borrowing, error) {
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range rows {
		rows[i].Status = rows[i].EffectiveStatus(now)
	}
	return rows, nil
}
