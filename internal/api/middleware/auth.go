package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskr-api/internal/api/shared"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/platform/logger"
	"github.com/phrazzld/taskr-api/internal/redact"
	"github.com/phrazzld/taskr-api/internal/service"
)

// UnauthenticatedMessage is the only body an authentication failure gets.
const UnauthenticatedMessage = "Please authenticate"

// Authenticator resolves a raw bearer token to the user holding it.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
	}
}

// Authenticate accepts a request only if its bearer token is signed, names
// an existing user, and is still in that user's token list. The user and the
// token go into the request context. Failures never say which check failed.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthenticated) {
				logger.FromContextOrDefault(r.Context(), slog.Default()).Warn("token check failed",
					slog.String("error", redact.Error(err)))
			}
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		ctx := shared.WithAuth(r.Context(), user, token)
		log := logger.FromContextOrDefault(ctx, slog.Default()).
			With(slog.String("user_id", user.ID.String()))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
