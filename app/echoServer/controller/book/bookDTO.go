package book

type CreateBookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn" validate:"required"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Description string `json:"description"`
	CoverImage  string `json:"cover_image" validate:"omitempty,url"`
	Format      string `json:"format" validate:"required,oneof=Hardcover Paperback E-Book Audiobook"`
	TotalCopies int    `json:"total_copies" validate:"required,gte=1"`
}

// UpdateBookReq is a partial update; absent fields stay untouched.
type UpdateBookReq struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Author      *string `json:"author" validate:"omitempty,min=1"`
	ISBN        *string `json:"isbn" validate:"omitempty,min=1"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	Description *string `json:"description"`
	CoverImage  *string `json:"cover_image" validate:"omitempty,url"`
	Format      *string `json:"format" validate:"omitempty,oneof=Hardcover Paperback E-Book Audiobook"`
	TotalCopies *int    `json:"total_copies" validate:"omitempty,gte=1"`
}
