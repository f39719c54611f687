package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/siamcode/standupstrip-backend/api/controllers"
	"github.com/siamcode/standupstrip-backend/api/middleware"
	"github.com/siamcode/standupstrip-backend/api/routes"
	"github.com/siamcode/standupstrip-backend/internal/auth"
	"github.com/siamcode/standupstrip-backend/internal/memberships"
	"github.com/siamcode/standupstrip-backend/internal/reminders"
	"github.com/siamcode/standupstrip-backend/internal/standups"
	"github.com/siamcode/standupstrip-backend/internal/summaries"
	"github.com/siamcode/standupstrip-backend/internal/teams"
	"github.com/siamcode/standupstrip-backend/internal/users"
	"github.com/siamcode/standupstrip-backend/internal/weekly"
	"github.com/siamcode/standupstrip-backend/pkg/ai"
	"github.com/siamcode/standupstrip-backend/pkg/config"
	"github.com/siamcode/standupstrip-backend/pkg/db"
	"github.com/siamcode/standupstrip-backend/pkg/logger"
	"github.com/siamcode/standupstrip-backend/pkg/mailer"
	"github.com/siamcode/standupstrip-backend/pkg/metrics"
	"github.com/siamcode/standupstrip-backend/pkg/migrate"
	"github.com/siamcode/standupstrip-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	emailMetrics := metrics.NewEmailMetrics(registry)
	summaryMetrics := metrics.NewSummaryMetrics(registry)

	var smtpSender mailer.Sender
	var mailPool *mailer.Pool
	if cfg.SMTP.Configured() {
		smtpSender = mailer.NewSMTPSender(cfg.SMTP)
		mailPool = mailer.NewPool(cfg.Mailer, smtpSender, logg, emailMetrics)
		defer mailPool.Close()
	} else {
		logg.Warn(context.Background(), "smtp not configured, outbound email disabled")
	}

	generator, err := summaries.NewGenerator(ai.NewClient(cfg.Gemini), logg, summaryMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create summary generator", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	teamRepo := teams.NewRepository(conn)
	membershipRepo := memberships.NewRepository(conn)
	standupRepo := standups.NewRepository(conn)
	summaryRepo := summaries.NewRepository(conn)
	weeklyRepo := weekly.NewRepository(conn)

	authParams := auth.ServiceParams{
		DB:        dbClient,
		UsersRepo: userRepo,
		Logger:    logg,
		JWT:       cfg.JWT,
		Password:  cfg.Password,
		Flags:     cfg.FeatureFlags,
		Frontend:  cfg.Frontend,
	}
	if mailPool != nil {
		authParams.Mail = mailPool
	}
	authService, err := auth.NewService(authParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	teamParams := teams.ServiceParams{
		DB:              dbClient,
		TeamRepo:        teamRepo,
		MembershipsRepo: membershipRepo,
		UsersRepo:       userRepo,
		Logger:          logg,
		Frontend:        cfg.Frontend,
	}
	if mailPool != nil {
		teamParams.Mail = mailPool
	}
	teamService, err := teams.NewService(teamParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create team service", err)
		os.Exit(1)
	}

	standupService, err := standups.NewService(standups.ServiceParams{
		DB:          dbClient,
		StandupRepo: standupRepo,
		Members:     membershipRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create standup service", err)
		os.Exit(1)
	}

	summaryService, err := summaries.NewService(summaries.ServiceParams{
		DB:          dbClient,
		SummaryRepo: summaryRepo,
		Standups:    standupRepo,
		Members:     membershipRepo,
		Generator:   generator,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create summary service", err)
		os.Exit(1)
	}

	weeklyService, err := weekly.NewService(weekly.ServiceParams{
		DB:         dbClient,
		WeeklyRepo: weeklyRepo,
		Standups:   standupRepo,
		TeamRepo:   teamRepo,
		UsersRepo:  userRepo,
		Members:    membershipRepo,
		Generator:  generator,
		Mail:       smtpSender,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create weekly summary service", err)
		os.Exit(1)
	}

	var reminderService reminders.Service
	if smtpSender != nil {
		reminderService, err = reminders.NewService(reminders.ServiceParams{
			TeamRepo:        teamRepo,
			MembershipsRepo: membershipRepo,
			StandupRepo:     standupRepo,
			UsersRepo:       userRepo,
			Mail:            smtpSender,
			Logger:          logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create reminder service", err)
			os.Exit(1)
		}
	}

	var limiter middleware.RateLimiterStore
	var cachePinger controllers.Pinger
	if redisClient != nil {
		limiter = redisClient
		cachePinger = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			Database:    dbClient,
			Cache:       cachePinger,
			RateLimiter: limiter,
			Metrics:     registry,
			Auth:        authService,
			Teams:       teamService,
			Standups:    standupService,
			Summaries:   summaryService,
			Weekly:      weeklyService,
			Reminders:   reminderService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
