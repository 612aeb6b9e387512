package auth

import (
	"context"
	"net/http"
	"strings"

	"event-ticketing/internal/apperr"
)

type contextKey string

const identityKey contextKey = "identity"

// RequireRole gates a route group on a valid session token whose role
// matches. The Authorization header is checked first, then the session
// cookie. Missing, invalid, expired and role-mismatched tokens all
// short-circuit with 401 before any handler work.
func RequireRole(issuer *Issuer, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Invalid or expired token"))
				return
			}
			if claims.Role != role {
				apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest extracts the raw session token from the Authorization
// Bearer header or, failing that, the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Identity returns the claims attached by RequireRole. The bool is false for
// unguarded routes.
func Identity(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(identityKey).(Claims)
	return claims, ok
}

// SetSessionCookie writes the HTTP-only session cookie alongside the token
// returned in the body. Secure is gated on deployment config so local
// development over plain HTTP still works.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
}

// ClearSessionCookie is the whole of logout: issued tokens stay valid until
// expiry, the client just stops holding one.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
}
