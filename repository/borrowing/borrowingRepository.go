// Package borrowing is the ledger: book copy counts and borrowing records
// form one consistency domain, so every mutation here runs in a single
// database transaction.
package borrowing

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"libraryhub/model"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrNoCopies     = errors.New("no copies available")
	ErrNotFound     = errors.New("borrowing not found")
	ErrNotBorrowed  = errors.New("borrowing is not open")
)

// AuthorizeFunc runs inside the return transaction, after the borrowing row
// has been locked but before anything is mutated. Returning an error aborts
// the transaction untouched.
type AuthorizeFunc func(b *model.Borrowing) error

type Repo interface {
	// Borrow atomically takes one copy off the shelf and opens a borrowing
	// record. The availability check happens inside the UPDATE itself, so
	// two borrowers racing for the last copy cannot both succeed.
	Borrow(ctx context.Context, userID, bookID int64, dueDate time.Time) (*model.Borrowing, error)

	// Return atomically closes an open borrowing and puts the copy back.
	// Re-returning fails with ErrNotBorrowed; the copy-count increment is
	// guarded so it can never exceed total_copies.
	Return(ctx context.Context, id int64, returnedAt time.Time, authorize AuthorizeFunc) (*model.Borrowing, error)

	ListByUser(ctx context.Context, userID int64) ([]model.Borrowing, error)
	ListByBook(ctx context.Context, bookID int64) ([]model.Borrowing, error)
	ListAll(ctx context.Context) ([]model.Borrowing, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Borrow(ctx context.Context, userID, bookID int64, dueDate time.Time) (b *model.Borrowing, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const dec = `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE id = $1
		  AND available_copies >= 1`
	res, err := tx.ExecContext(ctx, dec, bookID)
	if err != nil {
		return nil, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		// Either the book is gone or the last copy was taken; tell them apart.
		var exists bool
		if err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, bookID,
		).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			err = ErrBookNotFound
			return nil, err
		}
		err = ErrNoCopies
		return nil, err
	}

	const ins = `
		INSERT INTO borrowings (user_id, book_id, due_date, status)
		VALUES ($1, $2, $3, 'borrowed')
		RETURNING id, user_id, book_id, borrow_date, due_date, return_date, status`
	b, err = scanBorrowing(tx.QueryRowContext(ctx, ins, userID, bookID, dueDate).Scan)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) Return(ctx context.Context, id int64, returnedAt time.Time, authorize AuthorizeFunc) (b *model.Borrowing, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const sel = `
		SELECT id, user_id, book_id, borrow_date, due_date, return_date, status
		FROM borrowings
		WHERE id = $1
		FOR UPDATE`
	cur, err := scanBorrowing(tx.QueryRowContext(ctx, sel, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return nil, err
	}

	if authorize != nil {
		if err = authorize(cur); err != nil {
			return nil, err
		}
	}
	if cur.Status != model.StatusBorrowed {
		err = ErrNotBorrowed
		return nil, err
	}

	const inc = `
		UPDATE books
		SET available_copies = available_copies + 1
		WHERE id = $1
		  AND available_copies < total_copies`
	res, err := tx.ExecContext(ctx, inc, cur.BookID)
	if err != nil {
		return nil, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		// All copies are already on the shelf yet an open borrowing exists;
		// the ledger is inconsistent and this return must not make it worse.
		err = errors.New("copy count already at total")
		return nil, err
	}

	const upd = `
		UPDATE borrowings
		SET status = 'returned',
		    return_date = $2
		WHERE id = $1
		RETURNING id, user_id, book_id, borrow_date, due_date, return_date, status`
	b, err = scanBorrowing(tx.QueryRowContext(ctx, upd, id, returnedAt).Scan)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

const listCols = `
		SELECT id, user_id, book_id, borrow_date, due_date, return_date, status
		FROM borrowings`

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Borrowing, error) {
	const q = listCols + `
		WHERE user_id = $1
		ORDER BY borrow_date DESC, id DESC`
	return r.list(ctx, q, userID)
}

func (r *repo) ListByBook(ctx context.Context, bookID int64) ([]model.Borrowing, error) {
	const q = listCols + `
		WHERE book_id = $1
		ORDER BY borrow_date DESC, id DESC`
	return r.list(ctx, q, bookID)
}

func (r *repo) ListAll(ctx context.Context) ([]model.Borrowing, error) {
	const q = listCols + `
		ORDER BY borrow_date DESC, id DESC`
	return r.list(ctx, q)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Borrowing, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Borrowing
	for rows.Next() {
		b, err := scanBorrowing(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBorrowing(scan func(dest ...any) error) (*model.Borrowing, error) {
	var b model.Borrowing
	if err := scan(&b.ID, &b.UserID, &b.BookID, &b.BorrowDate, &b.DueDate, &b.ReturnDate, &b.Status); err != nil {
		return nil, err
	}
	return &b, nil
}
