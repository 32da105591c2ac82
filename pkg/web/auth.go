package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/giftcatalog/pkg/auth"
	"github.com/abgdnv/giftcatalog/pkg/logger"
)

// AuthMiddleware verifies the Bearer JWT in the Authorization header and stores its subject in the request context,
// where it also becomes the "user" attribute of every log record of the request.
// Requests without a valid token are rejected with 401 Unauthorized.
func AuthMiddleware(verifier auth.Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				RespondError(w, log, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				RespondError(w, log, http.StatusUnauthorized, "Bearer token is required")
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				log.WarnContext(r.Context(), "Token verification failed", "error", err)
				RespondError(w, log, http.StatusUnauthorized, "Invalid token")
				return
			}

			subject, ok := token.Subject()
			if !ok {
				RespondError(w, log, http.StatusUnauthorized, "no claim `sub`")
				return
			}

			ctx := logger.WithAttrs(WithUserID(r.Context(), subject), slog.String("user", subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
