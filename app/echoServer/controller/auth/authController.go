package auth

import (
	"log/slog"
	"net/http"

	"libraryhub/app/echoServer/jwtx"
	"libraryhub/model"
	authsvc "libraryhub/service/auth"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a member account; the session token is returned
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return ct.mapAuthErr(c, "register", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u, "token": token})
}

// RegisterAdmin registers an administrator, guarded by the shared admin
// enrollment secret.
// @Summary      Register admin
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.AdminRegisterReq  true  "Admin register payload"
// @Success      201  {object}  map[string]any
// @Failure      403  {object}  map[string]any "invalid admin registration key"
// @Router       /v1/admin/register [post]
func (ct *Controller) RegisterAdmin(c echo.Context) error {
	var req model.AdminRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, token, err := ct.Svc.RegisterAdmin(c.Request().Context(), req)
	if err != nil {
		return ct.mapAuthErr(c, "admin register", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u, "token": token})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /v1/users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return ct.mapAuthErr(c, "login", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
}

// Logout revokes the current session token.
// @Summary      Logout
// @Tags         users
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /v1/users/logout [post]
func (ct *Controller) Logout(c echo.Context) error {
	claims, err := jwtx.Claims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := ct.Svc.Logout(c.Request().Context(), claims); err != nil {
		ct.Log.Error("logout", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user.
// @Summary      Current user
// @Tags         users
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Router       /v1/users/me [get]
func (ct *Controller) Me(c echo.Context) error {
	p, err := jwtx.Principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	u, err := ct.Svc.Me(c.Request().Context(), p.UserID)
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		ct.Log.Error("me", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, u)
}

// ListUsers returns every registered user (admin only).
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /v1/users [get]
func (ct *Controller) ListUsers(c echo.Context) error {
	p, err := jwtx.Principal(c)
	if err != nil || !p.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	users, err := ct.Svc.ListUsers(c.Request().Context())
	if err != nil {
		ct.Log.Error("user list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": users})
}

func (ct *Controller) mapAuthErr(c echo.Context, op string, err error) error {
	switch authsvc.Code(err) {
	case authsvc.ErrEmailTaken:
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	case authsvc.ErrInvalidCreds:
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
	case authsvc.ErrBadSecret:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid admin registration key"})
	case authsvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	default:
		ct.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
