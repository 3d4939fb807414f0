package httpapi

import (
	"context"
	"net/http"
	"strings"

	"rosterkeeper/internal/server/auth"
)

type contextKey string

const accountIDKey contextKey = "accountID"

// requireAuth verifies the Bearer token and stores the account id in the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		accountID, err := auth.AccountIDFromToken(token, []byte(s.cfg.SecretKey))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountID extracts the authenticated account id placed by requireAuth.
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}
