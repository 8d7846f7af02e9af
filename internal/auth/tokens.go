package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadToken = errors.New("malformed access token")

// The client never verifies signatures, it holds no key. It only reads
// public claims off its own access token: the subject to know who it is,
// the expiry to know when a refresh is due.

// Subject returns the user id from the token's sub claim.
func Subject(token string) (int64, error) {
	claims, err := parseClaims(token)
	if err != nil {
		return 0, err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		// Some backends put the id in user_id instead of sub.
		if v, ok := claims["user_id"]; ok {
			return toInt64(v)
		}
		return 0, ErrBadToken
	}
	return strconv.ParseInt(sub, 10, 64)
}

// ExpiresAt returns the token's expiry time.
func ExpiresAt(token string) (time.Time, error) {
	claims, err := parseClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrBadToken
	}
	return exp.Time, nil
}

// Expired reports whether the token expires within the leeway from now.
func Expired(token string, leeway time.Duration) bool {
	exp, err := ExpiresAt(token)
	if err != nil {
		return true
	}
	return time.Now().Add(leeway).After(exp)
}

func parseClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrBadToken
	}
	return claims, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, ErrBadToken
	}
}
