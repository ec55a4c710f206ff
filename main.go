package main

import (
	"database/sql"
	"net/http"
	"os"

	"hr-bridge/internal/config"
	"hr-bridge/internal/publisher"
	"hr-bridge/internal/repository"
	"hr-bridge/internal/server"
	"hr-bridge/internal/service"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn("Could not load .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err).Fatal("Could not load configuration")
	}

	var (
		db          *sql.DB
		eventRepo   repository.EventRepository
		alertRepo   repository.AlertRepository
		signalRepo  repository.SignalRepository
		tenantsRepo repository.TenantLister
	)

	if cfg.DB.URL != "" {
		log.Info("Starting database migration...")
		m, err := migrate.New(cfg.DB.MigrationsURL, cfg.DB.URL)
		if err != nil {
			log.WithField("error", err).Fatal("Could not create migrate instance")
		}

		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.WithField("error", err).Fatal("Could not apply migration")
		}
		log.Info("Database migration finished successfully.")

		db, err = sql.Open("postgres", cfg.DB.URL)
		if err != nil {
			log.WithField("error", err).Fatal("Could not connect to the database")
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

		if err := db.Ping(); err != nil {
			log.WithField("error", err).Fatal("Could not ping the database")
		}
		log.Info("Successfully connected to the PostgreSQL database.")

		eventRepo = repository.NewPostgresEventRepository(db)
		alertRepo = repository.NewPostgresAlertRepository(db)
		signalRepo = repository.NewPostgresSignalRepository(db)
		tenantsRepo = repository.NewPostgresTenantRepository(db)
	} else {
		log.Warn("DATABASE_URL is not set, running with in-memory ledgers")
		store := repository.NewMemoryStore()
		eventRepo = store.EventRepo()
		alertRepo = store.AlertRepo()
		signalRepo = store.SignalRepo()
		tenantsRepo = store
	}

	// Optional Kafka sink for emitted ERP signals
	var signalPublisher service.SignalPublisher
	if cfg.Kafka.BootstrapServers != "" {
		erpPublisher, err := publisher.NewERPPublisher(cfg.Kafka.BootstrapServers, cfg.Kafka.ERPTopic)
		if err != nil {
			log.WithField("error", err).Fatal("Could not create ERP Kafka publisher")
		}
		defer erpPublisher.Close()
		signalPublisher = erpPublisher
	}

	// Create services
	eventService := service.NewEventService(eventRepo, alertRepo)
	ruleService := service.NewRuleService(eventRepo, alertRepo)
	erpService := service.NewERPService(eventRepo, signalRepo, signalPublisher)
	orchestrator := service.NewSyncOrchestrator(tenantsRepo, ruleService, erpService, cfg.Sync.MaxParallel)

	// Create server
	srv := server.NewServer(eventService, ruleService, erpService, orchestrator, tenantsRepo, db)

	// Setup Echo
	e := echo.New()

	e.GET("/", srv.Root)
	e.GET("/health", srv.HealthCheck)

	// Intercepted recruiter actions
	actions := e.Group("/actions")
	actions.POST("/shortlist", srv.Shortlist)
	actions.POST("/interview", srv.ScheduleInterview)
	actions.POST("/hire", srv.Hire)
	actions.POST("/debug/stuck-candidate", srv.InjectStuckCandidate)

	// Read-only ledger endpoints
	e.GET("/tenants", srv.ListTenants)
	e.GET("/events", srv.ListEvents)
	e.GET("/alerts", srv.ListAlerts)
	e.GET("/erp-signals", srv.ListERPSignals)

	// Evaluation pass and diagnostics
	e.POST("/system/process", srv.Process)
	e.GET("/explain/:entity_id", srv.ExplainEntity)

	log.WithField("port", cfg.Port).Info("HR event bridge is starting with Echo")

	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.WithField("error", err).Fatal("Echo server failed to start")
	}
}
