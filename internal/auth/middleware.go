package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/marketplace-api/internal/httputil"
	"github.com/redmonkez12/marketplace-api/internal/logging"
)

var (
	ErrIdentityNotFound = errors.New("no user matches the token")
	ErrMissingToken     = errors.New("missing bearer token")
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Identity is the authenticated user attached to the request context.
// It is restricted to the fields needed downstream.
type Identity struct {
	ID    string
	Email string
	Token string
}

// IdentityFinder resolves a bearer token to its user
type IdentityFinder interface {
	FindIdentityByToken(ctx context.Context, token string) (*Identity, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	finder IdentityFinder
}

func NewMiddleware(finder IdentityFinder) *Middleware {
	return &Middleware{finder: finder}
}

// RequireAuth resolves the bearer token and rejects the request when no
// user owns it
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, err := BearerToken(r)
		if err != nil {
			logger.Debug("authentication rejected", "reason", err.Error())
			httputil.RespondUnauthorized(w)
			return
		}

		identity, err := m.finder.FindIdentityByToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrIdentityNotFound) {
				logger.Warn("authentication rejected: unknown token")
				httputil.RespondUnauthorized(w)
				return
			}
			logger.Error("token lookup failed", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if identity == nil || !TokensEqual(identity.Token, token) {
			httputil.RespondUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// BearerToken extracts the token of an `Authorization: Bearer <token>` header
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" {
		return "", ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

// WithIdentity stores the authenticated user in ctx
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFromContext extracts the authenticated user from the request context
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	return identity, ok && identity != nil
}
