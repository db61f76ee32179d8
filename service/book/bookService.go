package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"libraryhub/model"
	bookrepo "libraryhub/repository/book"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type ErrCode string

const (
	ErrNotFound       ErrCode = "BOOK_NOT_FOUND"
	ErrISBNTaken      ErrCode = "ISBN_TAKEN"
	ErrBadCategory    ErrCode = "CATEGORY_NOT_FOUND"
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrCopiesConflict ErrCode = "COPIES_CONFLICT"
	ErrHasOutstanding ErrCode = "COPIES_OUTSTANDING"
	ErrHasHistory     ErrCode = "HAS_BORROW_HISTORY"
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

// Update re-exported so controllers build partial updates without importing
// the repository.
type Update = bookrepo.Update

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	UpdatePartial(ctx context.Context, id int64, upd Update) (*model.Book, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Service interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, upd Update) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, b *model.Book) error {
	if b.Title == "" || b.Author == "" || b.ISBN == "" || b.CategoryID <= 0 || b.TotalCopies < 1 {
		return makeErr(ErrBadInput)
	}
	if err := s.r.Create(ctx, b); err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (s *service) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return s.r.List(ctx, f)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id int64, upd Update) (*model.Book, error) {
	if upd.TotalCopies != nil && *upd.TotalCopies < 1 {
		return nil, makeErr(ErrBadInput)
	}
	b, err := s.r.UpdatePartial(ctx, id, upd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The guard also produces no rows when shrinking total_copies
			// below the number of outstanding loans.
			if _, lookErr := s.r.ByID(ctx, id); lookErr == nil {
				return nil, makeErr(ErrCopiesConflict)
			}
			return nil, makeErr(ErrNotFound)
		}
		return nil, mapPgErr(err)
	}
	return b, nil
}

// Delete refuses while copies are out on loan, and a book that was ever
// borrowed is kept for its history (the FK surfaces as HAS_BORROW_HISTORY).
func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.r.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return makeErr(ErrHasHistory)
		}
		return err
	}
	if deleted {
		return nil
	}
	if _, err := s.r.ByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return makeErr(ErrHasOutstanding)
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return makeErr(ErrISBNTaken)
		case pgerrcode.ForeignKeyViolation:
			return makeErr(ErrBadCategory)
		case pgerrcode.CheckViolation:
			return makeErr(ErrBadInput)
		}
	}
	return err
}
