package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/config"
	"github.com/mamadbah2/dfarm/internal/normalizer"
	"github.com/mamadbah2/dfarm/internal/repository/mongodb"
	"github.com/mamadbah2/dfarm/internal/repository/sheets"
	wprepo "github.com/mamadbah2/dfarm/internal/repository/wordpress"
	"github.com/mamadbah2/dfarm/internal/scheduler"
	"github.com/mamadbah2/dfarm/internal/server/handlers"
	"github.com/mamadbah2/dfarm/internal/server/router"
	expensesvc "github.com/mamadbah2/dfarm/internal/service/expenses"
	herdsvc "github.com/mamadbah2/dfarm/internal/service/herd"
	reportingsvc "github.com/mamadbah2/dfarm/internal/service/reporting"
	"github.com/mamadbah2/dfarm/pkg/clients/wordpress"
	"github.com/mamadbah2/dfarm/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	wpClient := wordpress.NewClient(cfg.WordPress)
	norm := normalizer.New(baseLogger.Named("normalizer"))
	animalRepo := wprepo.NewAnimals(wpClient, norm, baseLogger.Named("repo.animals"))
	expenseRepo := wprepo.NewExpenses(wpClient, norm, baseLogger.Named("repo.expenses"))

	var store mongodb.Repository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI missing, report snapshots disabled")
	}

	var sheet sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheet = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, report rows disabled")
	}

	herdSvc := herdsvc.NewService(animalRepo, baseLogger.Named("svc.herd"))
	expenseSvc := expensesvc.NewService(expenseRepo, baseLogger.Named("svc.expenses"))
	reportingSvc := reportingsvc.NewService(animalRepo, expenseRepo, store, sheet, cfg.Reporting.Location(), baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Animals:   handlers.NewAnimalHandler(herdSvc, baseLogger.Named("handlers.animals")),
		Expenses:  handlers.NewExpenseHandler(expenseSvc, baseLogger.Named("handlers.expenses")),
		Dashboard: handlers.NewDashboardHandler(reportingSvc, baseLogger.Named("handlers.dashboard")),
	}, wpClient, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, wpClient, baseLogger.Named("scheduler"))
	switch err := sched.Start(); {
	case errors.Is(err, scheduler.ErrNoServiceAccount):
		baseLogger.Warn("service account missing, nightly report disabled")
	case err != nil:
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	default:
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
