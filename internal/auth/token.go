// Package auth issues and verifies the signed session tokens that
// authenticate every protected route, and provides the middleware that
// attaches the resolved identity to the request context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie the token is also delivered in.
const CookieName = "token"

// Claims is the identity carried by a verified session token.
type Claims struct {
	ID   int64
	Role string
}

// Issuer signs and verifies HS256 session tokens. Tokens are stateless:
// logout clears the client cookie but never invalidates issued tokens
// server-side.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL reports the configured token lifetime, used for cookie max-age.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token carrying the account id and role, expiring ttl from
// now.
func (i *Issuer) Issue(id int64, role string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", id),
		"role": role,
		"exp":  now.Add(i.ttl).Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify parses and validates a token, returning its claims. It fails on a
// bad signature, a non-HMAC signing method, malformed claims, or an elapsed
// expiry.
func (i *Issuer) Verify(token string) (Claims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("invalid token: %w", err)
	}
	if !tok.Valid {
		return Claims{}, errors.New("invalid token")
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, errors.New("subject claim missing")
	}
	var id int64
	if _, err := fmt.Sscanf(sub, "%d", &id); err != nil {
		return Claims{}, fmt.Errorf("malformed subject claim: %w", err)
	}

	role, _ := claims["role"].(string)
	if role == "" {
		return Claims{}, errors.New("role claim missing")
	}

	return Claims{ID: id, Role: role}, nil
}
