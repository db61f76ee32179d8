package borrowing

import (
	"log/slog"
	"net/http"
	"strconv"

	"libraryhub/app/echoServer/jwtx"
	borrowingsvc "libraryhub/service/borrowing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc borrowingsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	p, err := jwtx.Principal(c)
	return err == nil && p.IsAdmin()
}

// POST /v1/borrowings
// @Summary      Borrow a book
// @Description  Takes one copy off the shelf and opens a loan for the caller
// @Tags         borrowings
// @Security     BearerAuth
// @Param        payload  body  CreateBorrowingReq  true  "Borrow payload"
// @Success      201  {object}  model.Borrowing
// @Failure      404  {object}  map[string]any "book not found"
// @Failure      409  {object}  map[string]any "no copies available"
// @Router       /v1/borrowings [post]
func (h *Controller) Create(c echo.Context) error {
	p, err := jwtx.Principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req CreateBorrowingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.Borrow(c.Request().Context(), p.UserID, req.BookID, req.DueDate)
	if err != nil {
		return h.mapLedgerErr(c, "borrow", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/borrowings/:id/return
// @Summary      Return a borrowed book
// @Description  Closes the loan and puts the copy back; re-returning is rejected
// @Tags         borrowings
// @Security     BearerAuth
// @Param        id  path  int  true  "borrowing id"
// @Success      200  {object}  model.Borrowing
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any "already returned"
// @Router       /v1/borrowings/{id}/return [post]
func (h *Controller) Return(c echo.Context) error {
	p, err := jwtx.Principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Return(c.Request().Context(), p, id)
	if err != nil {
		return h.mapLedgerErr(c, "return", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/borrowings/user
// @Summary      My borrowing history
// @Tags         borrowings
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/borrowings/user [get]
func (h *Controller) Mine(c echo.Context) error {
	p, err := jwtx.Principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.ListMine(c.Request().Context(), p.UserID)
	if err != nil {
		h.Log.Error("borrowing history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrowings  (admin)
// @Summary      All borrowings
// @Tags         borrowings
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /v1/borrowings [get]
func (h *Controller) ListAll(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	rows, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		h.Log.Error("borrowing list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrowings/book/:id  (admin)
// @Summary      Borrowings of one book
// @Tags         borrowings
// @Security     BearerAuth
// @Param        id  path  int  true  "book id"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /v1/borrowings/book/{id} [get]
func (h *Controller) ByBook(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.ListByBook(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("borrowing list by book", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (h *Controller) mapLedgerErr(c echo.Context, op string, err error) error {
	switch borrowingsvc.Code(err) {
	case borrowingsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case borrowingsvc.ErrNoCopies:
		return c.JSON(http.StatusConflict, echo.Map{"message": "no copies available"})
	case borrowingsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing not found"})
	case borrowingsvc.ErrNotBorrowed:
		return c.JSON(http.StatusConflict, echo.Map{"message": "borrowing already returned"})
	case borrowingsvc.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case borrowingsvc.ErrBadDueDate:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "due date must be in the future"})
	default:
		h.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
