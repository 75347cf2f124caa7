// devtoken はローカル確認用のアクセストークンを発行する。
//
//	go run ./cmd/devtoken -user 1
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"wheats/internal/domain/model"
	"wheats/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

// APIの AuthJWT が検証するのと同じクレームで署名する
func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	claims := middleware.NewAccessClaims(userID, role, now, i.accessTTL)
	if err := claims.Valid(); err != nil {
		return "", time.Time{}, err
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, claims.ExpiresAt.Time, nil
}

func main() {
	userID := flag.Int64("user", 0, "user id (sub)")
	role := flag.String("role", "USER", "role claim")
	ttl := flag.Duration("ttl", 15*time.Minute, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}
	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "-user must be positive")
		os.Exit(1)
	}

	issuer := &jwtIssuer{secret: []byte(secret), accessTTL: *ttl}
	token, exp, err := issuer.Issue(*userID, model.Role(*role), time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", exp.Format(time.RFC3339))
}
