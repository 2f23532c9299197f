package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "access_token"
)

const unauthenticatedBody = `{"message":"Unauthenticated."}`

// RequireAuth resolves the bearer token and stores the caller and the token
// in the request context. Anything short of a valid token is a 401.
func RequireAuth(sessions *services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plaintext, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeUnauthenticated(w)
				return
			}

			user, token, err := sessions.ValidateSession(r.Context(), plaintext)
			if err != nil {
				if !errors.Is(err, services.ErrUnauthenticated) {
					log.Printf("ERROR [%s]: token validation failed: %v", chimw.GetReqID(r.Context()), err)
				}
				writeUnauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, token)))
		})
	}
}

// UserFromContext returns the authenticated user set by RequireAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// TokenFromContext returns the access token the request authenticated with.
func TokenFromContext(ctx context.Context) (models.AccessToken, bool) {
	token, ok := ctx.Value(tokenContextKey).(models.AccessToken)
	return token, ok
}

// WithUser returns ctx carrying user and token, as RequireAuth would set them.
func WithUser(ctx context.Context, user models.User, token models.AccessToken) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, tokenContextKey, token)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(unauthenticatedBody))
}
