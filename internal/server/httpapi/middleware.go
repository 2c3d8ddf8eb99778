package httpapi

import (
	"context"
	"net/http"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/server/auth"
)

type ctxKey int

const userIDKey ctxKey = iota

// authenticate requires a valid access token and puts the account id on
// the request context.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(common.AccessTokenHeaderName)
		if token == "" {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}
		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
