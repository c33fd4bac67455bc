package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/socialcal/backend/internal/logging"
)

type userIDKey struct{}

// UserIDFrom extracts the authenticated user set by RequireUser.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// RequireUser resolves the bearer token on the request and rejects the call
// with 401 when no valid session exists. The resolved user id is placed on
// the request context for downstream handlers.
func RequireUser(sessions SessionManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		if sessions == nil {
			logger.Error("session manager unavailable")
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
			return
		}

		token := bearerToken(r)
		if token == "" {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		userID, err := sessions.Resolve(token)
		if err != nil {
			logger.Warn("session resolution failed", "error", err)
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		ctx = context.WithValue(ctx, userIDKey{}, userID)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
