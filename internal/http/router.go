package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aquagem-backend/internal/handlers"
	"aquagem-backend/internal/middleware"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/monitoring"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	totpHandler *handlers.TOTPHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	routeHandler *handlers.RouteHandler,
	scheduleHandler *handlers.ScheduleHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	deliveryHandler *handlers.DeliveryHandler,
	notificationHandler *handlers.NotificationHandler,
	healthHandler *handlers.HealthHandler,
	liveTracker *monitoring.LiveTracker,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	authAPI := r.PathPrefix("/api/auth").Subrouter()
	authAPI.HandleFunc("/admin/login", authHandler.AdminLogin).Methods("POST")
	authAPI.HandleFunc("/admin/refresh", authHandler.Refresh(models.RoleAdmin)).Methods("POST")
	authAPI.HandleFunc("/delivery/otp/request", authHandler.RequestOTP).Methods("POST")
	authAPI.HandleFunc("/delivery/otp/verify", authHandler.VerifyOTP).Methods("POST")
	authAPI.HandleFunc("/delivery/refresh", authHandler.Refresh(models.RoleDeliveryBoy)).Methods("POST")
	authAPI.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	authAPI.Handle("/me", authMiddleware.Authenticate(http.HandlerFunc(authHandler.Me))).Methods("GET")

	// Admin API - every route requires the admin role
	adminAPI := r.PathPrefix("/api/admin").Subrouter()
	adminAPI.Use(authMiddleware.RequireRole(models.RoleAdmin))

	adminAPI.HandleFunc("/totp/setup", totpHandler.SetupTOTP).Methods("POST")
	adminAPI.HandleFunc("/totp/enable", totpHandler.EnableTOTP).Methods("POST")

	// generate must be registered before {date}
	adminAPI.HandleFunc("/schedule/generate", scheduleHandler.GenerateSchedule).Methods("GET")
	adminAPI.HandleFunc("/schedule/{date}", scheduleHandler.GetSchedule).Methods("GET")

	adminAPI.HandleFunc("/operations/dashboard", scheduleHandler.Dashboard).Methods("GET")
	adminAPI.HandleFunc("/operations/today", scheduleHandler.Today).Methods("GET")
	adminAPI.HandleFunc("/operations/delivery-boys", scheduleHandler.AgentsProgress).Methods("GET")
	adminAPI.HandleFunc("/operations/undelivered", analyticsHandler.Undelivered).Methods("GET")
	adminAPI.HandleFunc("/operations/alerts", analyticsHandler.Alerts).Methods("GET")
	adminAPI.HandleFunc("/operations/notify", notificationHandler.Notify).Methods("POST")
	adminAPI.HandleFunc("/operations/live-tracking", liveTracker.HandleWebSocket).Methods("GET")

	adminAPI.HandleFunc("/delivery-boys", userHandler.ListDeliveryBoys).Methods("GET")
	adminAPI.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	adminAPI.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")
	adminAPI.HandleFunc("/delivery-boys/{id}/today", scheduleHandler.AgentToday).Methods("GET")
	adminAPI.HandleFunc("/delivery-boys/{id}/performance", analyticsHandler.Performance).Methods("GET")

	adminAPI.HandleFunc("/deliveries/stats", analyticsHandler.Stats).Methods("GET")
	adminAPI.HandleFunc("/deliveries/analytics/by-route", analyticsHandler.ByRoute).Methods("GET")
	adminAPI.HandleFunc("/deliveries/analytics/by-delivery-boy", analyticsHandler.ByAgent).Methods("GET")
	adminAPI.HandleFunc("/deliveries/analytics/daily", analyticsHandler.Daily).Methods("GET")

	adminAPI.HandleFunc("/customers/{id}", customerHandler.GetCustomer).Methods("GET")
	adminAPI.HandleFunc("/customers/{id}/schedule", customerHandler.UpdateSchedule).Methods("PATCH")
	adminAPI.HandleFunc("/customers/{id}/status", customerHandler.UpdateStatus).Methods("PATCH")
	adminAPI.HandleFunc("/customers/{id}/route", customerHandler.AssignRoute).Methods("PATCH")
	adminAPI.HandleFunc("/customers/{id}/jars", customerHandler.UpdateJarBalance).Methods("PATCH")

	adminAPI.HandleFunc("/routes", routeHandler.ListRoutes).Methods("GET")
	adminAPI.HandleFunc("/routes/{id}/assign-delivery-boy", routeHandler.AssignDeliveryBoy).Methods("PATCH")

	// Delivery boy API
	deliveryAPI := r.PathPrefix("/api/delivery").Subrouter()
	deliveryAPI.Use(authMiddleware.RequireRole(models.RoleDeliveryBoy))
	deliveryAPI.HandleFunc("/today", scheduleHandler.MyToday).Methods("GET")
	deliveryAPI.HandleFunc("/route", routeHandler.MyRoute).Methods("GET")
	deliveryAPI.HandleFunc("/notifications", notificationHandler.Inbox).Methods("GET")
	deliveryAPI.HandleFunc("/deliveries", deliveryHandler.Record).Methods("POST")
	deliveryAPI.HandleFunc("/deliveries/{id}/proof-url", deliveryHandler.ProofUploadURL).Methods("POST")
	deliveryAPI.HandleFunc("/deliveries/{id}/proof", deliveryHandler.AttachProof).Methods("PATCH")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
