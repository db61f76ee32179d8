package book

import (
	"context"
	"database/sql"

	"libraryhub/model"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
)

const dialect = "postgres"

var bookCols = []interface{}{
	"id", "title", "author", "isbn", "category_id", "description",
	"cover_image", "format", "total_copies", "available_copies", "created_at",
}

// Update carries a partial book mutation; nil fields are left untouched.
type Update struct {
	Title       *string
	Author      *string
	ISBN        *string
	CategoryID  *int64
	Description *string
	CoverImage  *string
	Format      *string
	TotalCopies *int
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	// UpdatePartial applies upd; a change to total_copies shifts
	// available_copies by the same delta and fails with sql.ErrNoRows when
	// that would drive the available count negative.
	UpdatePartial(ctx context.Context, id int64, upd Update) (*model.Book, error)
	// Delete removes the book only while no copies are out on loan.
	Delete(ctx context.Context, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	// A book is never created partially borrowed.
	b.AvailableCopies = b.TotalCopies
	const q = `
		INSERT INTO books (title, author, isbn, category_id, description, cover_image, format, total_copies, available_copies)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.CategoryID, b.Description, b.CoverImage, b.Format, b.TotalCopies,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	ds := goqu.Dialect(dialect).
		From("books").
		Select(bookCols...).
		Order(goqu.I("id").Desc())

	if f.CategoryID > 0 {
		ds = ds.Where(goqu.C("category_id").Eq(f.CategoryID))
	}
	if f.AvailableOnly {
		ds = ds.Where(goqu.C("available_copies").Gt(0))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
		))
	}
	if f.Format != "" {
		ds = ds.Where(goqu.C("format").Eq(f.Format))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows.Scan, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, author, isbn, category_id, description, cover_image, format, total_copies, available_copies, created_at
		FROM books
		WHERE id = $1`
	var b model.Book
	if err := scanBook(r.db.QueryRowContext(ctx, q, id).Scan, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) UpdatePartial(ctx context.Context, id int64, upd Update) (*model.Book, error) {
	// COALESCE keeps untouched columns; the guard keeps available_copies
	// from going negative when inventory shrinks below outstanding loans.
	const q = `
		UPDATE books SET
			title            = COALESCE($2, title),
			author           = COALESCE($3, author),
			isbn             = COALESCE($4, isbn),
			category_id      = COALESCE($5, category_id),
			description      = COALESCE($6, description),
			cover_image      = COALESCE($7, cover_image),
			format           = COALESCE($8, format),
			available_copies = available_copies + (COALESCE($9, total_copies) - total_copies),
			total_copies     = COALESCE($9, total_copies)
		WHERE id = $1
		  AND available_copies + (COALESCE($9, total_copies) - total_copies) >= 0
		RETURNING id, title, author, isbn, category_id, description, cover_image, format, total_copies, available_copies, created_at`
	var b model.Book
	err := scanBook(r.db.QueryRowContext(ctx, q,
		id, upd.Title, upd.Author, upd.ISBN, upd.CategoryID,
		upd.Description, upd.CoverImage, upd.Format, upd.TotalCopies,
	).Scan, &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `
		DELETE FROM books
		WHERE id = $1
		  AND available_copies = total_copies`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func scanBook(scan func(dest ...any) error, b *model.Book) error {
	return scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.CategoryID, &b.Description,
		&b.CoverImage, &b.Format, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt,
	)
}
