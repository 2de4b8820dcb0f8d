package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtSegments is the number of dot-separated segments in a compact JWS.
const jwtSegments = 3

// Claims extends JWT registered claims with Customer Core-specific fields.
// Email and role are carried for logging and diagnostics; authorisation
// decisions always use the stored account row, not these claims.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// TokenCodec issues and verifies signed bearer tokens.
// The signing key and token lifetime are fixed at construction.
type TokenCodec struct {
	key []byte
	ttl time.Duration
}

// NewTokenCodec creates a codec with the given HMAC signing key and token TTL.
func NewTokenCodec(key []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{key: key, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed HS256 token for a user.
// Returns the compact token string and its expiry time.
func (c *TokenCodec) Issue(user *User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Email: user.Email,
		Role:  user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a compact token string.
// It distinguishes three failure classes so callers can log and respond
// accordingly: ErrTokenMalformed, ErrTokenSignature, and ErrTokenExpired.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	// Cheap structural check before any crypto work.
	if strings.Count(tokenString, ".") != jwtSegments-1 {
		return nil, ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %w", ErrTokenSignature, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}

	return claims, nil
}

// IsExpired reports whether a token is past its expiry. It fails closed:
// anything that does not verify — garbage input, a bad signature, a missing
// expiry claim — counts as expired.
func (c *TokenCodec) IsExpired(tokenString string) bool {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return true
	}
	return claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now())
}
