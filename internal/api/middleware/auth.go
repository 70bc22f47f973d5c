package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/anurag/vidtube-server/internal/api/response"
	"github.com/anurag/vidtube-server/internal/service"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
)

// Auth verifies the access token, sourced from the accessToken cookie
// or the Authorization header, in that order.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := accessTokenFromRequest(r)
			if tokenString == "" {
				log.Printf("ERROR [middleware.Auth] missing access token")
				response.Error(w, http.StatusUnauthorized, "Unauthorized request")
				return
			}

			claims, err := authService.ValidateAccessToken(tokenString)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				response.Error(w, http.StatusUnauthorized, "Invalid access token")
				return
			}

			userIDStr, ok := (*claims)["sub"].(string)
			if !ok {
				log.Printf("ERROR [middleware.Auth] missing 'sub' claim in token")
				response.Error(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] failed to parse user ID: %v", err)
				response.Error(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
