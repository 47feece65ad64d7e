package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagem-backend/internal/auth"
	"aquagem-backend/internal/config"
	"aquagem-backend/internal/models"
)

type fakeUsers map[int]*models.User

func (f fakeUsers) Get(_ context.Context, id int) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newTestAuth(t *testing.T) (*AuthMiddleware, *auth.JWTManager, fakeUsers) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "secret"
	cfg.JWT.RefreshSecret = "refresh"
	cfg.JWT.AccessTTLMinutes = 15
	cfg.JWT.RefreshTTLHours = 1
	cfg.JWT.Issuer = "test"
	jwtManager := auth.NewJWTManager(cfg)
	users := fakeUsers{
		1: {ID: 1, Role: models.RoleAdmin, IsActive: true},
		2: {ID: 2, Role: models.RoleDeliveryBoy, IsActive: true},
		3: {ID: 3, Role: models.RoleAdmin, IsActive: false},
	}
	return NewAuthMiddleware(jwtManager, users), jwtManager, users
}

func token(t *testing.T, j *auth.JWTManager, u *models.User) string {
	t.Helper()
	tok, err := j.GenerateToken(u)
	require.NoError(t, err)
	return tok
}

func TestRequireRole(t *testing.T) {
	m, j, users := newTestAuth(t)
	var gotID int
	h := m.RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }, http.StatusUnauthorized},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, http.StatusUnauthorized},
		{"admin bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token(t, j, users[1])) }, http.StatusNoContent},
		{"admin cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token(t, j, users[1])})
		}, http.StatusNoContent},
		{"wrong role", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token(t, j, users[2])) }, http.StatusForbidden},
		{"deactivated", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token(t, j, users[3])) }, http.StatusForbidden},
		{"unknown user", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token(t, j, &models.User{ID: 99, Role: models.RoleAdmin}))
		}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = 0
			req := httptest.NewRequest(http.MethodGet, "/api/admin/operations/today", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, 1, gotID)
			} else {
				assert.Zero(t, gotID, "handler must not run")
			}
		})
	}
}

func TestRequestLogger_StampsRequestID(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	const incoming = "3f1c2b8e-8a4d-4c1e-9b7a-2d6f0e5a1c33"
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.Header.Set(RequestIDHeader, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, seen)
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, rec.Body.String())
}
