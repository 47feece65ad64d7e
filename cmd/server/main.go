package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aquagem-backend/internal/auth"
	"aquagem-backend/internal/cache"
	"aquagem-backend/internal/config"
	"aquagem-backend/internal/database"
	"aquagem-backend/internal/db"
	"aquagem-backend/internal/handlers"
	"aquagem-backend/internal/health"
	h "aquagem-backend/internal/http"
	"aquagem-backend/internal/middleware"
	"aquagem-backend/internal/monitoring"
	"aquagem-backend/internal/notify"
	"aquagem-backend/internal/repositories"
	"aquagem-backend/internal/scheduling"
	"aquagem-backend/internal/services"
	"aquagem-backend/internal/sms"
	"aquagem-backend/internal/storage"
	"aquagem-backend/internal/timeutil"
	"aquagem-backend/internal/whatsapp"
	"aquagem-backend/migrations"
)

// startMetricsServer exposes /metrics on its own port so scrapes stay off
// the public listener.
func startMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("[Metrics] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Metrics] Server stopped: %v", err)
		}
	}()
	return srv
}

// newSMSSender picks the OTP transport. Anything but fast2sms with a key
// falls back to the in-memory mock.
func newSMSSender(cfg *config.Config) notify.Sender {
	if cfg.SMS.Provider == "fast2sms" && cfg.SMS.APIKey != "" {
		log.Printf("[SMS] Using Fast2SMS (route %s)", cfg.SMS.Route)
		return sms.NewFast2SMSService(cfg.SMS.APIKey, cfg.SMS.Route)
	}
	log.Println("[SMS] Using mock sender, codes are only logged")
	return sms.NewMockSMSService()
}

// newObjectStore returns nil (not a typed nil) when storage is off.
func newObjectStore(ctx context.Context, cfg *config.Config) storage.Store {
	if !cfg.Storage.Enabled() {
		log.Println("[Storage] Object storage not configured, proof uploads and manifest archive disabled")
		return nil
	}
	store, err := storage.NewR2Store(ctx, cfg.Storage)
	if err != nil {
		log.Printf("[Storage] Failed to initialise object store: %v (continuing without it)", err)
		return nil
	}
	log.Printf("[Storage] Using bucket %s", cfg.Storage.Bucket)
	return store
}

func main() {
	cfg := config.Load()

	if cfg.Schedule.Timezone != "" {
		if err := timeutil.SetLocation(cfg.Schedule.Timezone); err != nil {
			log.Fatalf("Invalid schedule timezone %q: %v", cfg.Schedule.Timezone, err)
		}
	}
	altMode, err := scheduling.ParseAlternateMode(cfg.Schedule.AlternateMode)
	if err != nil {
		log.Fatalf("Invalid schedule config: %v", err)
	}

	pool := db.Connect(cfg)
	defer pool.Close()
	log.Printf("Connected to database: %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	// Redis is optional: without it caching and OTP throttling are skipped
	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (serving uncached)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
		defer cache.Close()
	}

	log.Println("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.NewMigrator(pool, migrations.FS).RunMigrations(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	objectStore := newObjectStore(ctx, cfg)
	cancel()

	jwtManager := auth.NewJWTManager(cfg)
	cacheTTL := time.Duration(cfg.Redis.TTLSecs) * time.Second

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	routeRepo := repositories.NewRouteRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	deliveryRepo := repositories.NewDeliveryRepository(pool)
	otpRepo := repositories.NewOTPRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)
	directory := repositories.NewDirectory(customerRepo, routeRepo, userRepo)

	// Senders
	sendRetry := notify.Retry{
		Attempts: cfg.OTP.SendAttempts,
		Backoff:  time.Duration(cfg.OTP.SendBackoffMS) * time.Millisecond,
	}
	smsSender := newSMSSender(cfg)
	senders := []notify.Sender{smsSender, notify.LogSender{Name: "push"}}
	if cfg.WhatsApp.Enabled && cfg.WhatsApp.APIKey != "" {
		senders = append(senders, whatsapp.NewAiSensyService(cfg.WhatsApp.APIKey))
		log.Println("[WhatsApp] AiSensy enabled")
	}

	// Services
	engine := scheduling.NewEngine(scheduling.Resolver{AlternateMode: altMode})
	userService := services.NewUserService(userRepo, jwtManager)
	otpService := services.NewOTPService(otpRepo, userService, smsSender, sendRetry, services.OTPSettings{
		Length:         cfg.OTP.Length,
		Expiry:         time.Duration(cfg.OTP.ExpiryMinutes) * time.Minute,
		MaxAttempts:    cfg.OTP.MaxAttempts,
		MaxPerHour:     cfg.OTP.MaxPerHour,
		EchoInResponse: cfg.OTP.EchoInResponse,
	})
	totpService := services.NewTOTPService(userRepo)
	customerService := services.NewCustomerService(customerRepo, routeRepo)
	routeService := services.NewRouteService(routeRepo, userRepo)
	scheduleService := services.NewScheduleService(directory, deliveryRepo, engine)
	analyticsService := services.NewAnalyticsService(directory, deliveryRepo, customerRepo, cacheTTL, cfg.Schedule.OpsStartHour)
	reportService := services.NewReportService(objectStore)
	deliveryService := services.NewDeliveryService(deliveryRepo, customerRepo, objectStore)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, sendRetry, senders...)

	if cfg.OTP.EchoInResponse {
		log.Println("[OTP] WARNING: codes are echoed in responses, never enable this in production")
	}

	liveTracker := monitoring.NewLiveTracker(cfg.Server.CorsAllowedOrigins)
	liveTracker.Start()
	defer liveTracker.Stop()

	deliveryService.AddListener(services.CacheInvalidator)
	deliveryService.AddListener(services.MetricsRecorder)
	deliveryService.AddListener(liveTracker)

	maintenance := services.NewMaintenance(otpRepo, time.Hour)
	maintenance.Start()
	defer maintenance.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, otpService,
		jwtManager.AccessTTL(), jwtManager.RefreshTTL(), cfg.JWT.SecureCookies)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	router := h.NewRouter(
		authHandler,
		handlers.NewTOTPHandler(totpService),
		handlers.NewUserHandler(userService),
		handlers.NewCustomerHandler(customerService),
		handlers.NewRouteHandler(routeService),
		handlers.NewScheduleHandler(scheduleService, reportService),
		handlers.NewAnalyticsHandler(analyticsService),
		handlers.NewDeliveryHandler(deliveryService),
		handlers.NewNotificationHandler(notificationService),
		healthHandler,
		liveTracker,
		middleware.NewAuthMiddleware(jwtManager, userRepo),
	)
	router.Use(middleware.MetricsMiddleware)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.RequestLogger(middleware.PanicRecovery(corsMiddleware(router)))

	var metricsServer *http.Server
	if cfg.Server.MetricsPort > 0 && cfg.Server.MetricsPort != cfg.Server.Port {
		metricsServer = startMetricsServer(cfg.Server.MetricsPort)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received %s, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	if metricsServer != nil {
		metricsServer.Shutdown(shutdownCtx)
	}
	log.Println("Server stopped")
}
