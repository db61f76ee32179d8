// Package main LibraryHub API.
//
// @title           LibraryHub API
// @version         1.0
// @description     Library management service (catalog, borrowing ledger, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"libraryhub/app/echoServer"
	authctrl "libraryhub/app/echoServer/controller/auth"
	bookctrl "libraryhub/app/echoServer/controller/book"
	borrowingctrl "libraryhub/app/echoServer/controller/borrowing"
	categoryctrl "libraryhub/app/echoServer/controller/category"
	"libraryhub/app/echoServer/validation"
	"libraryhub/config"
	bookrepo "libraryhub/repository/book"
	borrowingrepo "libraryhub/repository/borrowing"
	categoryrepo "libraryhub/repository/category"
	sessionrepo "libraryhub/repository/session"
	userrepo "libraryhub/repository/user"
	authsvc "libraryhub/service/auth"
	booksvc "libraryhub/service/book"
	borrowingsvc "libraryhub/service/borrowing"
	categorysvc "libraryhub/service/category"
	"libraryhub/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// redis (session revocation)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	// repos
	ur := userrepo.New(db)
	cr := categoryrepo.New(db)
	br := bookrepo.New(db)
	lr := borrowingrepo.New(db)
	sr := sessionrepo.New(rdb)

	// services
	as := authsvc.New(ur, sr, cfg.JWTSecret, cfg.AdminSecret)
	cs := categorysvc.New(cr)
	bs := booksvc.New(br)
	ls := borrowingsvc.New(lr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	categoryC := &categoryctrl.Controller{Svc: cs, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowingC := &borrowingctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Category:  categoryC,
		Borrowing: borrowingC,

		JWTSecret: cfg.JWTSecret,
		Sessions:  sr,
		Log:       log,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
