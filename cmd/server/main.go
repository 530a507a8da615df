// server runs the PPF ops API: auth, work orders, clients, notifications, and reports.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ppf-ops-platform/internal/audit"
	auditrepo "ppf-ops-platform/internal/audit/repository"
	"ppf-ops-platform/internal/authsvc"
	clientrepo "ppf-ops-platform/internal/clientrec/repository"
	clientservice "ppf-ops-platform/internal/clientrec/service"
	"ppf-ops-platform/internal/config"
	"ppf-ops-platform/internal/db"
	"ppf-ops-platform/internal/httpapi"
	identityrepo "ppf-ops-platform/internal/identity/repository"
	notificationrepo "ppf-ops-platform/internal/notification/repository"
	notificationservice "ppf-ops-platform/internal/notification/service"
	"ppf-ops-platform/internal/policy/engine"
	reportrepo "ppf-ops-platform/internal/report/repository"
	reportservice "ppf-ops-platform/internal/report/service"
	"ppf-ops-platform/internal/security"
	sessionrepo "ppf-ops-platform/internal/session/repository"
	"ppf-ops-platform/internal/telemetry"
	"ppf-ops-platform/internal/telemetry/otel"
	"ppf-ops-platform/internal/telemetry/producer"
	userrepo "ppf-ops-platform/internal/user/repository"
	workorderrepo "ppf-ops-platform/internal/workorder/repository"
	workorderservice "ppf-ops-platform/internal/workorder/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	privKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("JWT_PRIVATE_KEY: %v", err)
	}
	pubKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("JWT_PUBLIC_KEY: %v", err)
	}
	tokens := security.NewTokenProvider(privKey, pubKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "ppfops-server", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	var emitter telemetry.EventEmitter
	if kp, err := producer.NewKafkaProducer(cfg.EventKafkaBrokersList(), cfg.EventKafkaTopic); err != nil {
		log.Fatalf("kafka producer: %v", err)
	} else if kp != nil {
		defer kp.Close()
		emitter = kp
	} else {
		emitter = otel.NewEventEmitter(providers.LoggerProvider)
	}

	auditRepo := auditrepo.NewPostgresRepository(database)
	auditLogger := audit.NewLogger(auditRepo, httpapi.IPFromContext)

	users := userrepo.NewPostgresRepository(database)
	identities := identityrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	authService := authsvc.NewAuthService(users, identities, sessions, hasher, tokens, cfg.RefreshTTL(), auditLogger)

	clientService := clientservice.NewService(clientrepo.NewPostgresRepository(database))
	notificationService := notificationservice.NewService(notificationrepo.NewPostgresRepository(database))
	workOrderService := workorderservice.NewService(
		workorderrepo.NewPostgresRepository(database),
		users,
		clientService,
		notificationService,
	)

	exportBase := cfg.ExportBaseURL
	if exportBase == "" {
		exportBase = "http://localhost" + cfg.HTTPAddr
	}
	reportService := reportservice.NewService(reportrepo.NewPostgresRepository(database), exportBase)

	policy := engine.NewOPAEvaluator()
	if err := policy.HealthCheck(ctx); err != nil {
		log.Fatalf("policy: %v", err)
	}

	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:          httpapi.NewAuthHandler(authService, emitter),
		WorkOrders:    httpapi.NewWorkOrderHandler(workOrderService, policy, auditLogger, emitter),
		Clients:       httpapi.NewClientHandler(clientService),
		Notifications: httpapi.NewNotificationHandler(notificationService),
		Reports:       httpapi.NewReportHandler(reportService),
		Users:         httpapi.NewUserHandler(users),
		Audit:         httpapi.NewAuditHandler(auditRepo),
	}, authService)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("API server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("API server stopped")
}
