package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/cache"
	"github.com/Horridhunk/carmannagement/internal/config"
	dbpkg "github.com/Horridhunk/carmannagement/internal/db"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	infraRepo "github.com/Horridhunk/carmannagement/internal/infra/repository"
	"github.com/Horridhunk/carmannagement/internal/logging"
	"github.com/Horridhunk/carmannagement/internal/metrics"
	"github.com/Horridhunk/carmannagement/internal/middleware"
	"github.com/Horridhunk/carmannagement/internal/notify"
	"github.com/Horridhunk/carmannagement/internal/reporting"
	"github.com/Horridhunk/carmannagement/internal/routes"
	"github.com/Horridhunk/carmannagement/internal/timezone"
	ucAccount "github.com/Horridhunk/carmannagement/internal/usecase/account"
)

type notifier interface {
	assignment.Notifier
	ucAccount.ResetSender
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "json").WithError(err).Fatal("invalid configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component(logger, "main")

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := dbpkg.NewDB(cfg, logging.Component(logger, "db"))
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get sql.DB")
	}
	defer sqlDB.Close()

	m := metrics.New()

	// ======================================================
	// NOTIFICATIONS
	// ======================================================
	var n notifier = notify.NewLogNotifier(logging.Component(logger, "notify"), notify.RevealLinks(cfg.DevMode))
	if cfg.RabbitURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.RabbitURL)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, notifications will only be logged")
		} else {
			defer amqpNotifier.Close()
			n = amqpNotifier
		}
	}

	// ======================================================
	// AUDIT + ENGINE
	// ======================================================
	dispatcher := audit.NewDispatcher(audit.New(db), logging.Component(logger, "audit"))
	defer dispatcher.Close()

	policy, err := domain.ParsePolicy(cfg.Business.SelectionPolicy)
	if err != nil {
		log.WithError(err).Fatal("invalid selection policy")
	}
	engine := assignment.NewEngine(policy, n, timezone.System, logging.Component(logger, "assignment"), m)

	// ======================================================
	// REPORTING
	// ======================================================
	driver := "pgx"
	if dbpkg.IsSQLite(db) {
		driver = "sqlite3"
	}

	var reportOpts []reporting.Option
	if cfg.RedisURL != "" {
		rc, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, dashboard stats will not be cached")
		} else {
			defer rc.Close()
			reportOpts = append(reportOpts, reporting.WithCache(rc, cfg.StatsCacheTTL))
		}
	}
	reports := reporting.NewService(
		sqlDB,
		driver,
		timezone.Location(cfg.Timezone),
		logging.Component(logger, "reporting"),
		reportOpts...,
	)

	// ======================================================
	// HTTP
	// ======================================================
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, logging.Component(logger, "ratelimit"))
	limiter.StartCleanup(5*time.Minute, ctx.Done())

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config:      cfg,
		Repo:        infraRepo.NewGormRepository(db),
		Engine:      engine,
		Issuer:      auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, timezone.System),
		Audit:       dispatcher,
		Metrics:     m,
		Reports:     reports,
		ResetSender: n,
		RateLimiter: limiter,
		Clock:       timezone.System,
		Log:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
