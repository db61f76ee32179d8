// service/book/bookService_test.go
package booksvc_test

import (
	"context"
	"database/sql"
	"testing"

	"libraryhub/model"
	booksvc "libraryhub/service/book"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type repoMock struct {
	createFn func(ctx context.Context, b *model.Book) error
	listFn   func(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	byIDFn   func(ctx context.Context, id int64) (*model.Book, error)
	updateFn func(ctx context.Context, id int64, upd booksvc.Update) (*model.Book, error)
	deleteFn func(ctx context.Context, id int64) (bool, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	return m.listFn(ctx, f)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) UpdatePartial(ctx context.Context, id int64, upd booksvc.Update) (*model.Book, error) {
	return m.updateFn(ctx, id, upd)
}
func (m *repoMock) Delete(ctx context.Context, id int64) (bool, error) { return m.deleteFn(ctx, id) }

func validBook() *model.Book {
	return &model.Book{
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		ISBN:        "978-0134190440",
		CategoryID:  1,
		Format:      model.FormatPaperback,
		TotalCopies: 3,
	}
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})

	cases := map[string]func(b *model.Book){
		"empty title":  func(b *model.Book) { b.Title = "" },
		"empty author": func(b *model.Book) { b.Author = "" },
		"empty isbn":   func(b *model.Book) { b.ISBN = "" },
		"no category":  func(b *model.Book) { b.CategoryID = 0 },
		"zero copies":  func(b *model.Book) { b.TotalCopies = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := validBook()
			mutate(b)
			if err := s.Create(context.Background(), b); booksvc.Code(err) != booksvc.ErrBadInput {
				t.Fatalf("got %v; want BAD_INPUT", err)
			}
		})
	}
}

func TestCreate_ISBNTaken(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "books_isbn_key"}
		},
	}
	s := booksvc.New(m)
	if err := s.Create(context.Background(), validBook()); booksvc.Code(err) != booksvc.ErrISBNTaken {
		t.Fatalf("got %v; want ISBN_TAKEN", err)
	}
}

func TestCreate_BadCategory(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
		},
	}
	s := booksvc.New(m)
	if err := s.Create(context.Background(), validBook()); booksvc.Code(err) != booksvc.ErrBadCategory {
		t.Fatalf("got %v; want CATEGORY_NOT_FOUND", err)
	}
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) { return nil, sql.ErrNoRows },
	}
	s := booksvc.New(m)
	if _, err := s.Detail(context.Background(), 9); booksvc.Code(err) != booksvc.ErrNotFound {
		t.Fatalf("got %v; want BOOK_NOT_FOUND", err)
	}
}

func TestUpdate_CopiesConflict(t *testing.T) {
	// The guarded UPDATE matches no row, yet the book exists: shrinking
	// total_copies below outstanding loans.
	m := &repoMock{
		updateFn: func(ctx context.Context, id int64, upd booksvc.Update) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) { return validBook(), nil },
	}
	s := booksvc.New(m)
	one := 1
	if _, err := s.Update(context.Background(), 5, booksvc.Update{TotalCopies: &one}); booksvc.Code(err) != booksvc.ErrCopiesConflict {
		t.Fatalf("got %v; want COPIES_CONFLICT", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	m := &repoMock{
		updateFn: func(ctx context.Context, id int64, upd booksvc.Update) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) { return nil, sql.ErrNoRows },
	}
	s := booksvc.New(m)
	title := "x"
	if _, err := s.Update(context.Background(), 5, booksvc.Update{Title: &title}); booksvc.Code(err) != booksvc.ErrNotFound {
		t.Fatalf("got %v; want BOOK_NOT_FOUND", err)
	}
}

func TestDelete_Outstanding(t *testing.T) {
	m := &repoMock{
		deleteFn: func(ctx context.Context, id int64) (bool, error) { return false, nil },
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			b := validBook()
			b.AvailableCopies = 1 // 2 of 3 still out
			return b, nil
		},
	}
	s := booksvc.New(m)
	if err := s.Delete(context.Background(), 5); booksvc.Code(err) != booksvc.ErrHasOutstanding {
		t.Fatalf("got %v; want COPIES_OUTSTANDING", err)
	}
}

func TestDelete_History(t *testing.T) {
	m := &repoMock{
		deleteFn: func(ctx context.Context, id int64) (bool, error) {
			return false, &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
		},
	}
	s := booksvc.New(m)
	if err := s.Delete(context.Background(), 5); booksvc.Code(err) != booksvc.ErrHasHistory {
		t.Fatalf("got %v; want HAS_BORROW_HISTORY", err)
	}
}

func TestDelete_Success(t *testing.T) {
	m := &repoMock{
		deleteFn: func(ctx context.Context, id int64) (bool, error) { return true, nil },
	}
	s := booksvc.New(m)
	if err := s.Delete(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestList_PassThrough(t *testing.T) {
	var got model.BookFilter
	m := &repoMock{
		listFn: func(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
			got = f
			return []model.Book{*validBook()}, nil
		},
	}
	s := booksvc.New(m)
	f := model.BookFilter{CategoryID: 2, AvailableOnly: true, Search: "go", Format: "Paperback"}
	rows, err := s.List(context.Background(), f)
	if err != nil || len(rows) != 1 {
		t.Fatalf("got %v rows err=%v; want 1 nil", len(rows), err)
	}
	if got != f {
		t.Fatalf("filter not passed through: got %+v", got)
	}
}
