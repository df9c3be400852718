package middleware

import (
	"net/http"
	"strings"

	"notionflow/server/internal/auth"
	"notionflow/server/internal/common"
	"notionflow/server/internal/db/repositories"
)

const sessionCookieName = "nf_session"

// AuthMiddleware resolves request identity from either a session cookie or
// an X-Api-Key header. API key requests carry the acting user in X-User-Id.
func AuthMiddleware(
	userRepo *repositories.UserRepository,
	keysRepo *repositories.KeysRepo,
	sessions *common.SessionService,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			apiKey := r.Header.Get("X-Api-Key")
			sessionID := sessionIDFromRequest(r)

			var claims auth.UserClaims

			switch {
			case sessionID != "":
				session, err := sessions.GetSession(r.Context(), sessionID)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid session", http.StatusUnauthorized)
					return
				}

				claims = &auth.SessionClaims{
					UserUUID:  session.UserID,
					UserEmail: session.Email,
					SessionID: session.SessionID,
				}

				ctx := auth.SetUserClaims(r.Context(), claims)
				ctx = auth.SetSessionData(ctx, session)
				next.ServeHTTP(w, r.WithContext(ctx))
				return

			case apiKey != "":
				keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}

				if !keyRes.Status {
					http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
					return
				}

				userID := r.Header.Get("X-User-Id")
				if userID == "" {
					http.Error(w, "Unauthorized. Missing X-User-Id", http.StatusUnauthorized)
					return
				}

				email := ""
				if user, err := userRepo.FindUserByID(r.Context(), userID); err == nil {
					email = user.Email
				}

				claims = &auth.APIKeyClaims{
					UserUUID:  userID,
					UserEmail: email,
					KeyID:     keyRes.ApiKey,
				}

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionIDFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
