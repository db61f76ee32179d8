package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by every issued token.
type Claims struct {
	UserID int64
	Role   string
	JTI    string
	Exp    time.Time
}

func Issue(secret string, userID int64, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAuth validates a "Bearer <token>" Authorization header and returns
// the claims.
func ParseAuth(authHeader string, secret string) (*Claims, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}

	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return FromMapClaims(mc)
}

// FromMapClaims extracts the typed claims from already-verified MapClaims
// (used by the echo-jwt middleware, which verifies the signature itself).
func FromMapClaims(mc jwt.MapClaims) (*Claims, error) {
	sub, ok := mc["sub"].(float64)
	if !ok {
		return nil, errors.New("sub missing in claims")
	}
	role, _ := mc["role"].(string)
	if role == "" {
		return nil, errors.New("role missing in claims")
	}
	jti, _ := mc["jti"].(string)

	c := &Claims{UserID: int64(sub), Role: role, JTI: jti}
	if exp, ok := mc["exp"].(float64); ok {
		c.Exp = time.Unix(int64(exp), 0)
		if time.Now().After(c.Exp) {
			return nil, errors.New("token expired")
		}
	}
	return c, nil
}
