// model/book.go
package model

import "time"

type BookFormat string

const (
	FormatHardcover BookFormat = "Hardcover"
	FormatPaperback BookFormat = "Paperback"
	FormatEBook     BookFormat = "E-Book"
	FormatAudiobook BookFormat = "Audiobook"
)

type Book struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	CategoryID      int64      `json:"category_id"`
	Description     string     `json:"description,omitempty"`
	CoverImage      string     `json:"cover_image,omitempty"`
	Format          BookFormat `json:"format"`
	TotalCopies     int        `json:"total_copies"`
	AvailableCopies int        `json:"available_copies"`
	CreatedAt       time.Time  `json:"created_at"`
}

// BookFilter narrows the public catalog listing. Zero values mean "no filter".
type BookFilter struct {
	CategoryID    int64
	AvailableOnly bool
	Search        string // substring match on title or author
	Format        string
}
