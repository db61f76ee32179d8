// app/echoServer/middleware.go
package echoServer

import (
	"log/slog"
	"net/http"
	"time"

	"libraryhub/app/echoServer/jwtx"
	"libraryhub/model"
	sessionrepo "libraryhub/repository/session"
	jwtutil "libraryhub/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// Principal runs after the echo-jwt signature check: it extracts the typed
// claims, rejects revoked sessions, and puts the Principal in the context
// for handlers to pass into services.
func Principal(sessions sessionrepo.Store, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, ok := c.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			mc, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			claims, err := jwtutil.FromMapClaims(mc)
			if err != nil {
				rid := c.Response().Header().Get(echo.HeaderXRequestID)
				log.Warn("claims rejected", "err", err, "req_id", rid, "ip", c.RealIP())
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			if claims.JTI != "" {
				revoked, err := sessions.IsRevoked(c.Request().Context(), claims.JTI)
				if err != nil {
					log.Error("session check failed", "err", err)
					return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
				}
				if revoked {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "session expired"})
				}
			}

			jwtx.SetPrincipal(c, model.Principal{UserID: claims.UserID, Role: claims.Role}, claims)
			return next(c)
		}
	}
}
