package category

import (
	"log/slog"
	"net/http"

	"libraryhub/app/echoServer/jwtx"
	categorysvc "libraryhub/service/category"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc categorysvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type CreateCategoryReq struct {
	Name string `json:"name" validate:"required,min=1"`
}

func isAdmin(c echo.Context) bool {
	p, err := jwtx.Principal(c)
	return err == nil && p.IsAdmin()
}

// POST /v1/categories  (admin)
// @Summary      Create category
// @Tags         categories
// @Security     BearerAuth
// @Param        payload  body  CreateCategoryReq  true  "Category payload"
// @Success      201  {object}  model.Category
// @Failure      409  {object}  map[string]any "name already taken"
// @Router       /v1/categories [post]
func (h *Controller) Create(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req CreateCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	row, err := h.Svc.Create(c.Request().Context(), req.Name)
	if err != nil {
		switch categorysvc.Code(err) {
		case categorysvc.ErrNameTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "category already exists"})
		case categorysvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("category create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, row)
}

// GET /v1/categories
// @Summary      List categories
// @Tags         categories
// @Success      200  {object}  map[string]any
// @Router       /v1/categories [get]
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("category list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
