package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"libraryhub/app/echoServer/jwtx"
	"libraryhub/model"
	booksvc "libraryhub/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	p, err := jwtx.Principal(c)
	return err == nil && p.IsAdmin()
}

// POST /v1/books  (admin)
// @Summary      Create book
// @Tags         books
// @Security     BearerAuth
// @Param        payload  body  CreateBookReq  true  "Book payload"
// @Success      201  {object}  model.Book
// @Failure      403  {object}  map[string]any
// @Failure      409  {object}  map[string]any "isbn already registered"
// @Router       /v1/books [post]
func (h *Controller) Create(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	b := &model.Book{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Format:      model.BookFormat(req.Format),
		TotalCopies: req.TotalCopies,
	}
	if err := h.Svc.Create(c.Request().Context(), b); err != nil {
		return h.mapBookErr(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /v1/books
// @Summary      List books
// @Description  Public catalog listing with optional filters
// @Tags         books
// @Param        category_id  query  int     false  "category filter"
// @Param        available    query  bool    false  "only books with copies on the shelf"
// @Param        search       query  string  false  "substring match on title or author"
// @Param        format       query  string  false  "format filter"
// @Success      200  {object}  map[string]any
// @Router       /v1/books [get]
func (h *Controller) List(c echo.Context) error {
	var f model.BookFilter
	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid category_id"})
		}
		f.CategoryID = id
	}
	f.AvailableOnly = c.QueryParam("available") == "true"
	f.Search = c.QueryParam("search")
	f.Format = c.QueryParam("format")

	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
// @Summary      Book detail
// @Tags         books
// @Param        id  path  int  true  "book id"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  map[string]any
// @Router       /v1/books/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return h.mapBookErr(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, row)
}

// PATCH /v1/books/:id  (admin)
// @Summary      Update book
// @Description  Partial update; changing total_copies shifts available_copies by the same delta
// @Tags         books
// @Security     BearerAuth
// @Param        id       path  int            true  "book id"
// @Param        payload  body  UpdateBookReq  true  "fields to change"
// @Success      200  {object}  model.Book
// @Failure      409  {object}  map[string]any "inventory below outstanding loans"
// @Router       /v1/books/{id} [patch]
func (h *Controller) Update(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	upd := booksvc.Update{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Format:      req.Format,
		TotalCopies: req.TotalCopies,
	}
	row, err := h.Svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return h.mapBookErr(c, "book update", err)
	}
	return c.JSON(http.StatusOK, row)
}

// DELETE /v1/books/:id  (admin)
// @Summary      Delete book
// @Description  Refused while copies are on loan or borrow history exists
// @Tags         books
// @Security     BearerAuth
// @Param        id  path  int  true  "book id"
// @Success      204  "deleted"
// @Failure      409  {object}  map[string]any
// @Router       /v1/books/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.mapBookErr(c, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Controller) mapBookErr(c echo.Context, op string, err error) error {
	switch booksvc.Code(err) {
	case booksvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case booksvc.ErrISBNTaken:
		return c.JSON(http.StatusConflict, echo.Map{"message": "isbn already registered"})
	case booksvc.ErrBadCategory:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "category does not exist"})
	case booksvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	case booksvc.ErrCopiesConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": "total copies below outstanding loans"})
	case booksvc.ErrHasOutstanding:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book has copies out on loan"})
	case booksvc.ErrHasHistory:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book has borrowing history"})
	default:
		h.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
