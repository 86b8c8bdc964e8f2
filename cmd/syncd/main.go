package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xelth-com/branchsync/internal/config"
	"github.com/xelth-com/branchsync/internal/database"
	"github.com/xelth-com/branchsync/internal/handlers"
	"github.com/xelth-com/branchsync/internal/models"
	"github.com/xelth-com/branchsync/internal/replication"
	"github.com/xelth-com/branchsync/internal/services/odoo"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-migrate schema
	logrus.Info("Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.AccountMove{},
		&models.AccountMoveLine{},
		&models.AccountPayment{},
		&models.CurrencyRate{},
		&models.ResPartner{},
		&models.AccountAccount{},
		&models.AccountJournal{},
	)
	if err != nil {
		logrus.Warnf("Migration warning: %v", err)
	}

	// 4. Wire the replication layer
	store := replication.NewStore(db)
	remote := odoo.NewClient(cfg.Remote)
	orch := replication.New(remote, store, cfg.Remote, cfg.Sync)

	svc := replication.NewService(orch, time.Duration(cfg.Sync.IntervalMinutes)*time.Minute)
	svc.Start()

	// 5. Set up HTTP router
	router := handlers.NewRouter(cfg, handlers.NewSyncHandler(orch, store))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		logrus.Infof("Server (%s) starting on port %s", cfg.Remote.Role, cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	logrus.Infof("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	svc.Stop()

	logrus.Info("Closing database connection...")
	if err := db.Close(); err != nil {
		logrus.Errorf("Database close error: %v", err)
	}

	logrus.Info("Shutdown complete")
}
