package echoServer

import (
	"log/slog"

	"libraryhub/app/echoServer/controller/auth"
	"libraryhub/app/echoServer/controller/book"
	"libraryhub/app/echoServer/controller/borrowing"
	"libraryhub/app/echoServer/controller/category"
	sessionrepo "libraryhub/repository/session"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Category  *category.Controller
	Borrowing *borrowing.Controller

	JWTSecret string
	Sessions  sessionrepo.Store
	Log       *slog.Logger
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.POST("/admin/register", c.Auth.RegisterAdmin)

	// Catalog browsing needs no session
	pub.GET("/categories", c.Category.List)
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(Principal(c.Sessions, c.Log))

	authed.POST("/users/logout", c.Auth.Logout)
	authed.GET("/users/me", c.Auth.Me)
	authed.GET("/users", c.Auth.ListUsers) // admin

	authed.POST("/categories", c.Category.Create) // admin
	authed.POST("/books", c.Book.Create)          // admin
	authed.PATCH("/books/:id", c.Book.Update)     // admin
	authed.DELETE("/books/:id", c.Book.Delete)    // admin

	authed.POST("/borrowings", c.Borrowing.Create)
	authed.POST("/borrowings/:id/return", c.Borrowing.Return)
	authed.GET("/borrowings/user", c.Borrowing.Mine)
	authed.GET("/borrowings", c.Borrowing.ListAll)         // admin
	authed.GET("/borrowings/book/:id", c.Borrowing.ByBook) // admin
}
