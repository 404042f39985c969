package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/actions"
	"winsales/internal/agenda"
	"winsales/internal/cache"
	"winsales/internal/config"
	"winsales/internal/db"
	"winsales/internal/handlers"
	"winsales/internal/middleware"
	"winsales/internal/models"
	"winsales/internal/notify"
)

func main() {
	cfg := config.Load()

	logger, err := cfg.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	users := models.NewUserRepository(conn)
	if err := seedAdminUser(ctx, cfg, users, logger); err != nil {
		logger.Warn("failed to seed admin user", zap.Error(err))
	}

	store := cache.New(cfg.RedisURL, logger)
	defer store.Close()
	revalidator := cache.NewRevalidator(store, logger)

	notifier := notify.NewMulti(logger)
	var publisher *notify.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = notify.NewPublisher(cfg.AMQPURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, sale events will not be published", zap.Error(err))
		} else {
			notifier.Add("amqp", publisher)
		}
	}
	if cfg.SMTPHost != "" {
		notifier.Add("mail", notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom))
	}
	defer notifier.Close()

	leads := models.NewLeadRepository(conn)
	sales := models.NewSaleRepository(conn)
	team := models.NewTeamRepository(conn)
	catalog := models.NewCatalogRepository(conn)

	acts := actions.New(actions.Deps{
		Leads:       leads,
		Sales:       sales,
		Team:        team,
		Users:       users,
		Catalog:     catalog,
		Revalidator: revalidator,
		Notifier:    notifier,
		Logger:      logger,
		Location:    cfg.Location(),
	})

	renderer, err := handlers.NewRenderer(cfg.Location(), logger)
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}

	health := map[string]handlers.Pinger{
		"database": conn,
		"cache":    handlers.PingFunc(store.Ping),
	}
	if publisher != nil {
		health["rabbitmq"] = publisher
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:      cfg,
		Logger:      logger,
		Gate:        middleware.NewGate(cfg.SessionSecret, cfg.SessionTTL),
		Actions:     acts,
		Agenda:      agenda.NewService(leads, cfg.Location()),
		Leads:       leads,
		Sales:       sales,
		Users:       users,
		Team:        team,
		Catalog:     catalog,
		Cache:       store,
		Revalidator: revalidator,
		Health:      health,
		Renderer:    renderer,
	})

	protect := csrf.Protect(
		[]byte(cfg.CSRFKey),
		csrf.Secure(cfg.SecureCookies),
		csrf.Path("/"),
		csrf.FieldName("csrf_token"),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           protect(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", "http://localhost:"+cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("timezone", cfg.Timezone),
			zap.Int("notifiers", notifier.Len()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

// seedAdminUser creates the configured admin account on first boot.
func seedAdminUser(ctx context.Context, cfg *config.Config, users *models.UserRepository, logger *zap.Logger) error {
	_, err := users.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hash, err := actions.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if _, err := users.Create(ctx, cfg.AdminName, cfg.AdminEmail, string(access.RoleAdmin), hash); err != nil {
		return err
	}
	logger.Info("admin user created", zap.String("email", cfg.AdminEmail))
	return nil
}
