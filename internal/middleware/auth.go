package middleware

import (
	"context"
	"net/http"
	"strings"

	"aquagem-backend/internal/auth"
	"aquagem-backend/internal/models"
	"aquagem-backend/pkg/utils"
)

type contextKey string

const UserIDKey contextKey = "user_id"
const MobileKey contextKey = "mobile"
const RoleKey contextKey = "role"

// AccessTokenCookie is the cookie name accepted as an alternative to the
// Authorization header.
const AccessTokenCookie = "accessToken"

// UserLookup loads the current state of a user for each request.
type UserLookup interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      UserLookup
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
	}
}

// tokenFromRequest extracts a bearer token from the Authorization header,
// falling back to the access token cookie.
func tokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// authenticate validates the token and reloads the user. It writes the
// rejection itself and returns nil when the request must stop.
func (m *AuthMiddleware) authenticate(w http.ResponseWriter, r *http.Request) *models.User {
	token, ok := tokenFromRequest(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Access denied. No valid token provided.")
		return nil
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		return nil
	}

	// Check database for current user status (for immediate permission updates)
	user, err := m.users.Get(r.Context(), claims.UserID)
	if err != nil || user == nil {
		utils.Error(w, http.StatusUnauthorized, "User not found")
		return nil
	}

	if !user.IsActive {
		utils.Error(w, http.StatusForbidden, "Account deactivated. Please contact administrator.")
		return nil
	}
	return user
}

func withUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	ctx = context.WithValue(ctx, MobileKey, user.Mobile)
	return context.WithValue(ctx, RoleKey, user.Role)
}

// Authenticate is a middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.authenticate(w, r)
		if user == nil {
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// RequireRole is a middleware that ensures the user has one of the allowed roles
func (m *AuthMiddleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := m.authenticate(w, r)
			if user == nil {
				return
			}

			// Check role from database, not token
			hasRole := false
			for _, role := range allowedRoles {
				if user.Role == role {
					hasRole = true
					break
				}
			}

			if !hasRole {
				utils.Error(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// GetMobileFromContext extracts mobile from request context
func GetMobileFromContext(ctx context.Context) (string, bool) {
	mobile, ok := ctx.Value(MobileKey).(string)
	return mobile, ok
}

// GetRoleFromContext extracts role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// WithUserForTest injects an authenticated user into ctx.
func WithUserForTest(ctx context.Context, user *models.User) context.Context {
	return withUser(ctx, user)
}
