package borrowing

import "time"

type CreateBorrowingReq struct {
	BookID  int64     `json:"book_id" validate:"required,gt=0"`
	DueDate time.Time `json:"due_date" validate:"required"`
}
