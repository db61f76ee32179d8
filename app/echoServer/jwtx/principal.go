// app/echoServer/jwtx/principal.go
package jwtx

import (
	"errors"

	"libraryhub/model"
	jwtutil "libraryhub/util/jwt"

	"github.com/labstack/echo/v4"
)

const (
	principalKey = "principal"
	claimsKey    = "jwt_claims"
)

func SetPrincipal(c echo.Context, p model.Principal, claims *jwtutil.Claims) {
	c.Set(principalKey, p)
	c.Set(claimsKey, claims)
}

func Principal(c echo.Context) (model.Principal, error) {
	p, ok := c.Get(principalKey).(model.Principal)
	if !ok {
		return model.Principal{}, errors.New("no principal in context")
	}
	return p, nil
}

func Claims(c echo.Context) (*jwtutil.Claims, error) {
	cl, ok := c.Get(claimsKey).(*jwtutil.Claims)
	if !ok || cl == nil {
		return nil, errors.New("no jwt claims in context")
	}
	return cl, nil
}
