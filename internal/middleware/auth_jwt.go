package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wheats/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // model.Role
)

var errBadClaims = errors.New("invalid access claims")

// UserSubject は sub クレームのユーザーID。文字列でも数値でも受ける。
type UserSubject int64

func (s UserSubject) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(s), 10))), nil
}

func (s *UserSubject) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return errBadClaims
	}
	*s = UserSubject(id)
	return nil
}

// AccessClaims はこのAPIが受け付けるアクセストークンの中身。
// sub は RegisteredClaims.Subject より優先される。
type AccessClaims struct {
	UserID UserSubject `json:"sub"`
	Role   model.Role  `json:"role"`
	jwt.RegisteredClaims
}

func NewAccessClaims(userID int64, role model.Role, now time.Time, ttl time.Duration) AccessClaims {
	return AccessClaims{
		UserID: UserSubject(userID),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// Valid は exp/nbf に加えてユーザーIDとロールを見る。
func (c AccessClaims) Valid() error {
	if err := c.RegisteredClaims.Valid(); err != nil {
		return err
	}
	if c.UserID <= 0 {
		return errBadClaims
	}
	switch c.Role {
	case model.RoleUser, model.RoleOwner, model.RoleAdmin:
		return nil
	default:
		return errBadClaims
	}
}

// bearerAuth用のJWT検証ミドルウェア。
// トークンの発行はIdentity側で、ここでは検証してuser_id/roleを取り出すだけ。
func AuthJWT(secret string) echo.MiddlewareFunc {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			var claims AccessClaims
			token, err := jwt.ParseWithClaims(rawToken, &claims, keyFunc)
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, int64(claims.UserID))
			c.Set(CtxUserRoleKey, claims.Role)

			return next(c)
		}
	}
}

// Authorization: Bearer <token> からトークンを抜く
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
