package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"libraryhub/model"
	sessionrepo "libraryhub/repository/session"
	"libraryhub/util/hash"
	jwtutil "libraryhub/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// errors used by controllers

type ErrCode string

const (
	ErrEmailTaken   ErrCode = "EMAIL_TAKEN"
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrBadSecret    ErrCode = "BAD_ADMIN_SECRET"
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrNotFound     ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const tokenTTL = 24 * time.Hour

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	RegisterAdmin(ctx context.Context, req model.AdminRegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Logout(ctx context.Context, claims *jwtutil.Claims) error
	Me(ctx context.Context, userID int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type service struct {
	ur          Repo
	sessions    sessionrepo.Store
	jwtSecret   string
	adminSecret string
}

func New(ur Repo, sessions sessionrepo.Store, jwtSecret, adminSecret string) Service {
	return &service{ur: ur, sessions: sessions, jwtSecret: jwtSecret, adminSecret: adminSecret}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	return s.register(ctx, req, model.RoleUser)
}

func (s *service) RegisterAdmin(ctx context.Context, req model.AdminRegisterReq) (*model.User, string, error) {
	if req.AdminSecret != s.adminSecret {
		return nil, "", makeErr(ErrBadSecret)
	}
	return s.register(ctx, req.RegisterReq, model.RoleAdmin)
}

func (s *service) register(ctx context.Context, req model.RegisterReq, role string) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 6 {
		return nil, "", makeErr(ErrBadInput)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, "", makeErr(ErrEmailTaken)
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.jwtSecret, u.ID, u.Role, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", makeErr(ErrBadInput)
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", makeErr(ErrInvalidCreds)
		}
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}

	token, err := jwtutil.Issue(s.jwtSecret, u.ID, u.Role, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout revokes the token's jti for the remainder of its lifetime.
func (s *service) Logout(ctx context.Context, claims *jwtutil.Claims) error {
	if claims == nil || claims.JTI == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, claims.JTI, time.Until(claims.Exp))
}

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.ur.List(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
