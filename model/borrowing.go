// model/borrowing.go
package model

import "time"

type BorrowingStatus string

const (
	StatusBorrowed BorrowingStatus = "borrowed"
	StatusReturned BorrowingStatus = "returned"
	StatusOverdue  BorrowingStatus = "overdue"
)

type Borrowing struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	BookID     int64           `json:"book_id"`
	BorrowDate time.Time       `json:"borrow_date"`
	DueDate    time.Time       `json:"due_date"`
	ReturnDate *time.Time      `json:"return_date,omitempty"`
	Status     BorrowingStatus `json:"status"`
}

// EffectiveStatus derives the displayed status at read time. The store only
// ever holds "borrowed" or "returned"; an open loan past its due date is
// reported as overdue.
func (b Borrowing) EffectiveStatus(now time.Time) BorrowingStatus {
	if b.Status == StatusBorrowed && b.ReturnDate == nil && b.DueDate.Before(now) {
		return StatusOverdue
	}
	return b.Status
}
