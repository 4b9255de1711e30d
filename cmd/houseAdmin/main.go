package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"house_admin/internal/config"
	"house_admin/internal/domain"
	"house_admin/internal/handlers"
	"house_admin/internal/metrics"
	"house_admin/internal/repository/postgres"
	"house_admin/internal/router"
	"house_admin/internal/service/intake"
	"house_admin/internal/service/membership"
	"house_admin/internal/service/roster"
	"house_admin/internal/service/sheet"
	"house_admin/internal/service/tg"
	pkgconfig "house_admin/pkg/config"
	pgconn "house_admin/pkg/db/postgres"
	"house_admin/pkg/masker"
	"house_admin/pkg/tgbotapisfm"
	"house_admin/pkg/zaplogger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger, err := zaplogger.New("info")
	if err != nil {
		panic(err)
	}

	cfg := config.Config{}
	if err := pkgconfig.LoadEnv(".env", &cfg, logger); err != nil {
		logger.Fatal("error loading configs", zap.Error(err))
	}
	if logger, err = zaplogger.New(cfg.Level); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := masker.LogConfigs(logger, &cfg); err != nil {
		logger.Fatal("error logging configs", zap.Error(err))
	}

	dbGorm, err := pgconn.NewGormConnection(cfg.DBConfig)
	if err != nil {
		logger.Fatal("error creating gorm connection", zap.Error(err))
	}
	if err := postgres.Migrate(dbGorm); err != nil {
		logger.Fatal("error migrating database", zap.Error(err))
	}
	sqlDB, err := dbGorm.DB()
	if err != nil {
		logger.Fatal("error getting sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	intakeRepo := postgres.NewIntakeRepository(dbGorm)
	houseRepo := postgres.NewHouseRepository(dbGorm)
	memberRepo := postgres.NewMemberRepository(dbGorm)
	archiveRepo := postgres.NewArchiveRepository(dbGorm)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	syncMetrics, err := metrics.NewSyncMetrics(reg)
	if err != nil {
		logger.Fatal("error registering sync metrics", zap.Error(err))
	}
	httpMetrics, err := metrics.NewHTTPMetrics(reg)
	if err != nil {
		logger.Fatal("error registering http metrics", zap.Error(err))
	}

	forceUpdate := make(chan struct{}, 1)

	reconciler := membership.NewReconciler(intakeRepo, houseRepo, memberRepo, syncMetrics, logger)
	intakeService := intake.NewService(intakeRepo, reconciler, forceUpdate, logger)
	memberService := membership.NewMemberService(memberRepo, houseRepo, logger)
	capacity := membership.NewCapacityChecker(memberRepo, houseRepo)

	var sheetService domain.SheetService
	if cfg.GoogleSheetConfig.Enabled() {
		s, err := sheet.NewSheetService(
			context.Background(),
			cfg.GoogleSheetConfig.CredentialsBase64,
			cfg.GoogleSheetConfig.SheetID,
			cfg.GoogleSheetConfig.RosterTabID,
			cfg.GoogleSheetConfig.PauseMs,
			sheet.ColumnsFromOrder(cfg.GoogleSheetConfig.Columns),
		)
		if err != nil {
			logger.Fatal("error creating sheet service", zap.Error(err))
		}
		sheetService = s
	} else {
		logger.Info("roster export disabled: SHEET_ID or CREDENTIALS_BASE64 not set")
	}

	worker := roster.NewWorker(archiveRepo, memberRepo, houseRepo, sheetService,
		cfg.RosterConfig.Interval, forceUpdate, logger, roster.WithMetrics(syncMetrics))
	defer worker.Stop()

	var bot *tgbotapisfm.Bot
	if cfg.TelegramConfig.Enabled() {
		tgHandler := tg.NewTGHandler(intakeService, reconciler, capacity, forceUpdate, logger)
		bot, err = tgbotapisfm.NewBot(tgbotapisfm.Config{
			Token:           cfg.TelegramConfig.BotToken,
			Expiration:      24 * time.Hour,
			CleanupInterval: 1 * time.Hour,
			States:          tgHandler.StatesMap(),
			InitialState:    tg.StateStart,
			AllowList:       cfg.TelegramConfig.Admins,
		}, logger)
		if err != nil {
			logger.Fatal("error creating bot", zap.Error(err))
		}
		go func() {
			if err := <-bot.Start(0, 60); err != nil {
				logger.Error("telegram bot stopped with error", zap.Error(err))
			}
		}()
	} else {
		logger.Info("telegram bot disabled: BOT_TOKEN not set")
	}

	h := handlers.NewHandler(handlers.Deps{
		Intake:    intakeService,
		Houses:    houseRepo,
		Members:   memberRepo,
		MemberSvc: memberService,
		Archive:   archiveRepo,
		Available: capacity,
		Cleaner:   worker,
		DB:        sqlDB,
	}, logger)

	gin.SetMode(cfg.HTTPConfig.GinMode)
	srv := &http.Server{
		Addr:              cfg.HTTPConfig.Addr,
		Handler:           router.NewRouter(h, cfg.HTTPConfig, httpMetrics, reg, logger),
		ReadHeaderTimeout: cfg.HTTPConfig.ReadTimeout,
		ReadTimeout:       cfg.HTTPConfig.ReadTimeout,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("shutting down")

	if bot != nil {
		bot.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
}
