package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid player token")

// PlayerClaims binds a token holder to the one match they control.
type PlayerClaims struct {
	MatchID string `json:"match_id"`
	jwt.RegisteredClaims
}

// IssuePlayerToken signs an HS256 token granting control of matchID's player
// paddle until ttl elapses.
func IssuePlayerToken(secret, matchID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := PlayerClaims{
		MatchID: matchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "player",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign player token: %w", err)
	}
	return signed, exp, nil
}

// ParsePlayerToken validates a token and returns its claims.
func ParsePlayerToken(secret, token string) (*PlayerClaims, error) {
	claims := &PlayerClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid || claims.MatchID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize checks that token grants control of matchID.
func Authorize(secret, token, matchID string) error {
	claims, err := ParsePlayerToken(secret, token)
	if err != nil {
		return err
	}
	if claims.MatchID != matchID {
		return ErrInvalidToken
	}
	return nil
}
