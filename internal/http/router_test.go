package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagem-backend/internal/auth"
	"aquagem-backend/internal/config"
	"aquagem-backend/internal/handlers"
	"aquagem-backend/internal/middleware"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/monitoring"
)

type users map[int]*models.User

func (u users) Get(_ context.Context, id int) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("not found")
}

func newTestRouter(t *testing.T) (*mux.Router, *auth.JWTManager, users) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "secret"
	cfg.JWT.RefreshSecret = "refresh"
	cfg.JWT.AccessTTLMinutes = 15
	cfg.JWT.RefreshTTLHours = 1
	cfg.JWT.Issuer = "test"
	jwtManager := auth.NewJWTManager(cfg)
	known := users{
		1: {ID: 1, Role: models.RoleAdmin, IsActive: true},
		2: {ID: 2, Role: models.RoleDeliveryBoy, IsActive: true},
	}

	r := NewRouter(
		&handlers.AuthHandler{}, &handlers.TOTPHandler{}, &handlers.UserHandler{},
		&handlers.CustomerHandler{}, &handlers.RouteHandler{}, &handlers.ScheduleHandler{},
		&handlers.AnalyticsHandler{}, &handlers.DeliveryHandler{}, &handlers.NotificationHandler{},
		&handlers.HealthHandler{}, monitoring.NewLiveTracker(nil),
		middleware.NewAuthMiddleware(jwtManager, known),
	)
	return r, jwtManager, known
}

func TestRouteTemplates(t *testing.T) {
	r, _, _ := newTestRouter(t)

	cases := []struct{ method, path, want string }{
		{"GET", "/api/admin/schedule/generate", "/api/admin/schedule/generate"},
		{"GET", "/api/admin/schedule/2026-01-07", "/api/admin/schedule/{date}"},
		{"GET", "/api/admin/delivery-boys/7/today", "/api/admin/delivery-boys/{id}/today"},
		{"GET", "/api/admin/deliveries/analytics/daily", "/api/admin/deliveries/analytics/daily"},
		{"PATCH", "/api/admin/customers/4/jars", "/api/admin/customers/{id}/jars"},
		{"PATCH", "/api/admin/routes/3/assign-delivery-boy", "/api/admin/routes/{id}/assign-delivery-boy"},
		{"PATCH", "/api/delivery/deliveries/9/proof", "/api/delivery/deliveries/{id}/proof"},
		{"POST", "/api/auth/delivery/otp/verify", "/api/auth/delivery/otp/verify"},
		{"GET", "/api/admin/operations/live-tracking", "/api/admin/operations/live-tracking"},
	}
	for _, tc := range cases {
		var match mux.RouteMatch
		require.True(t, r.Match(httptest.NewRequest(tc.method, tc.path, nil), &match), tc.path)
		tpl, err := match.Route.GetPathTemplate()
		require.NoError(t, err)
		assert.Equal(t, tc.want, tpl, tc.path)
	}
}

func TestAdminRoutesFailClosed(t *testing.T) {
	r, j, known := newTestRouter(t)

	adminToken, err := j.GenerateToken(known[1])
	require.NoError(t, err)
	deliveryToken, err := j.GenerateToken(known[2])
	require.NoError(t, err)

	for _, path := range []string{
		"/api/admin/schedule/2026-01-07",
		"/api/admin/schedule/generate",
		"/api/admin/operations/dashboard",
		"/api/admin/operations/today",
		"/api/admin/delivery-boys/2/today",
		"/api/admin/deliveries/analytics/by-route",
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+deliveryToken)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}

	// admins cannot use the delivery boy API
	req := httptest.NewRequest(http.MethodGet, "/api/delivery/today", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: adminToken})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthIsPublic(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
