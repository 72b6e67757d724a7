package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"barangay-hub/internal/api/middleware"
	v1 "barangay-hub/internal/api/v1"
	"barangay-hub/internal/event"
	"barangay-hub/internal/repository/postgres"
	"barangay-hub/internal/scheduler"
	schedulerjobs "barangay-hub/internal/scheduler/jobs"
	"barangay-hub/internal/service"
	systemlog "barangay-hub/pkg/logger"
	"barangay-hub/pkg/mailer"
	"barangay-hub/pkg/sms"
)

type Config struct {
	App struct {
		Env string `mapstructure:"env"`
	} `mapstructure:"app"`
	Server struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	Database struct {
		URL         string        `mapstructure:"url"`
		MaxConns    int           `mapstructure:"max_conns"`
		PingTimeout time.Duration `mapstructure:"ping_timeout"`
	} `mapstructure:"database"`
	Log struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	} `mapstructure:"log"`
	Security struct {
		JWTSecret         string `mapstructure:"jwt_secret"`
		JWTSecretFile     string `mapstructure:"jwt_secret_file"`
		InternalToken     string `mapstructure:"internal_token"`
		InternalTokenFile string `mapstructure:"internal_token_file"`
		CookieDomain      string `mapstructure:"cookie_domain"`
		CookieSecure      bool   `mapstructure:"cookie_secure"`
	} `mapstructure:"security"`
	CORS struct {
		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"cors"`
	Publisher struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"publisher"`
	Analytics struct {
		Synthetic bool `mapstructure:"synthetic"`
	} `mapstructure:"analytics"`
	Web struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"web"`
	Storage struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"storage"`
	Mail struct {
		Provider        string `mapstructure:"provider"`
		SendgridKey     string `mapstructure:"sendgrid_key"`
		SendgridKeyFile string `mapstructure:"sendgrid_key_file"`
		FromName        string `mapstructure:"from_name"`
		FromEmail       string `mapstructure:"from_email"`
	} `mapstructure:"mail"`
	SMS struct {
		Provider   string `mapstructure:"provider"`
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		APIKeyFile string `mapstructure:"api_key_file"`
		Sender     string `mapstructure:"sender"`
	} `mapstructure:"sms"`
}

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "healthcheck":
			os.Exit(runHealthcheck())
		case "migrate":
			if err := runMigrateCommand(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}

	logger, systemLogStore, err := newLogger(cfg)
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Sync() //nolint:errcheck

	isDebugMode := strings.EqualFold(cfg.App.Env, "development")
	if !isDebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dbPool, err := newDBPool(context.Background(), cfg)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	defer dbPool.Close()

	announcementRepo := postgres.NewAnnouncementRepository(dbPool)
	residentRepo := postgres.NewResidentRepository(dbPool)
	submissionRepo := postgres.NewSubmissionRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	feedbackRepo := postgres.NewFeedbackRepository(dbPool)
	predictionRepo := postgres.NewPredictionRepository(dbPool)
	counterRepo := postgres.NewCounterRepository(dbPool)

	eventBus := event.NewBus()

	announcementSvc := service.NewAnnouncementService(announcementRepo, logger)
	residentSvc := service.NewResidentService(residentRepo, eventBus, logger)
	submissionSvc := service.NewSubmissionService(submissionRepo, counterRepo, eventBus, logger)
	authSvc := service.NewAuthService(userRepo, cfg.Security.JWTSecret, logger)
	statsSvc := service.NewStatsService(userRepo, submissionRepo, logger)
	analyticsSvc := service.NewAnalyticsService(predictionRepo, cfg.Analytics.Synthetic, logger)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, logger)
	documentSvc := service.NewDocumentService(cfg.Storage.Dir, logger)

	verifyEndpoint := strings.TrimRight(cfg.Web.BaseURL, "/") + "/residents/verify"
	notificationSvc := service.NewNotificationService(buildMailer(cfg, logger), buildSMSSender(cfg, logger), verifyEndpoint, logger)
	notificationSvc.SubscribeTo(eventBus)

	publishJob := schedulerjobs.NewPublishJob(announcementSvc, logger)
	verificationJob := schedulerjobs.NewVerificationJob(residentSvc, logger)

	cronRunner := scheduler.NewScheduler(scheduler.Deps{
		PublishJob:      publishJob,
		VerificationJob: verificationJob,
	}, cfg.Publisher.Interval, logger)
	cronRunner.Start()
	defer func() {
		stopCtx := cronRunner.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(5 * time.Second):
		}
	}()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(buildCORSMiddleware(cfg))
	router.Use(middleware.RequestLogger(logger))

	cookie := v1.CookieSettings{
		Domain: cfg.Security.CookieDomain,
		Secure: cfg.Security.CookieSecure,
	}
	webBase := strings.TrimRight(cfg.Web.BaseURL, "/")

	v1.RegisterSystemRoutes(router, dbPool, systemLogStore, cfg.Security.JWTSecret)
	v1.RegisterAnnouncementRoutes(router, announcementSvc)
	v1.RegisterAuthRoutes(router, authSvc, cfg.Security.JWTSecret, cookie)
	v1.RegisterResidentRoutes(router, residentSvc, webBase+"/verify-success", webBase+"/verify-failed")
	v1.RegisterSubmissionRoutes(router, submissionSvc)
	v1.RegisterStatsRoutes(router, statsSvc, analyticsSvc)
	v1.RegisterFeedbackRoutes(router, feedbackSvc)
	v1.RegisterDocumentRoutes(router, documentSvc)

	internalGroup := router.Group("/internal")
	internalGroup.Use(middleware.InternalTokenAuth(cfg.Security.InternalToken))
	internalGroup.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	logger.Info("server started",
		zap.String("addr", srv.Addr),
		zap.String("version", Version),
		zap.String("commit", Commit),
		zap.String("build_time", BuildTime),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			logger.Fatal("server exited unexpectedly", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown server failed", zap.Error(err))
	}

	notificationsDone := make(chan struct{})
	go func() {
		notificationSvc.Wait()
		close(notificationsDone)
	}()
	select {
	case <-notificationsDone:
	case <-shutdownCtx.Done():
		logger.Warn("shutdown reached deadline with notifications still in flight")
	}
}

func loadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BRGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "BRGY_DATABASE_URL", "DATABASE_URL")

	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.ping_timeout", "3s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_secret_file", "")
	v.SetDefault("security.internal_token", "")
	v.SetDefault("security.internal_token_file", "")
	v.SetDefault("security.cookie_domain", "")
	v.SetDefault("security.cookie_secure", false)
	v.SetDefault("cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("publisher.interval", "60s")
	v.SetDefault("analytics.synthetic", true)
	v.SetDefault("web.base_url", "http://localhost:5173")
	v.SetDefault("storage.dir", "./storage")
	v.SetDefault("mail.provider", "console")
	v.SetDefault("mail.sendgrid_key", "")
	v.SetDefault("mail.sendgrid_key_file", "")
	v.SetDefault("mail.from_name", "Barangay Hub")
	v.SetDefault("mail.from_email", "no-reply@barangay-hub.local")
	v.SetDefault("sms.provider", "log")
	v.SetDefault("sms.base_url", "")
	v.SetDefault("sms.api_key", "")
	v.SetDefault("sms.api_key_file", "")
	v.SetDefault("sms.sender", "BRGYHUB")

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return Config{}, fmt.Errorf("read config file failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config failed: %w", err)
	}

	var err error
	if cfg.Security.JWTSecret, err = resolveSecret(cfg.Security.JWTSecret, cfg.Security.JWTSecretFile); err != nil {
		return Config{}, fmt.Errorf("read security.jwt_secret_file failed: %w", err)
	}
	if cfg.Security.InternalToken, err = resolveSecret(cfg.Security.InternalToken, cfg.Security.InternalTokenFile); err != nil {
		return Config{}, fmt.Errorf("read security.internal_token_file failed: %w", err)
	}
	if cfg.Mail.SendgridKey, err = resolveSecret(cfg.Mail.SendgridKey, cfg.Mail.SendgridKeyFile); err != nil {
		return Config{}, fmt.Errorf("read mail.sendgrid_key_file failed: %w", err)
	}
	if cfg.SMS.APIKey, err = resolveSecret(cfg.SMS.APIKey, cfg.SMS.APIKeyFile); err != nil {
		return Config{}, fmt.Errorf("read sms.api_key_file failed: %w", err)
	}

	if cfg.Database.URL == "" {
		return Config{}, errors.New("database.url is required")
	}
	if cfg.Database.MaxConns <= 0 {
		return Config{}, errors.New("database.max_conns must be greater than 0")
	}
	if cfg.Database.PingTimeout <= 0 {
		return Config{}, errors.New("database.ping_timeout must be greater than 0")
	}
	if cfg.Security.JWTSecret == "" {
		return Config{}, errors.New("security.jwt_secret is required")
	}
	if cfg.Publisher.Interval < time.Second {
		return Config{}, errors.New("publisher.interval must be at least 1s")
	}
	if len(cfg.CORS.AllowOrigins) == 0 {
		return Config{}, errors.New("cors.allow_origins must not be empty")
	}
	for _, origin := range cfg.CORS.AllowOrigins {
		if strings.TrimSpace(origin) == "*" {
			return Config{}, errors.New("cors.allow_origins must not contain wildcard *")
		}
	}

	return cfg, nil
}

// resolveSecret prefers the inline value and falls back to reading the
// companion *_file path, so deployments can mount secrets instead of
// passing them through the environment.
func resolveSecret(value, file string) (string, error) {
	if strings.TrimSpace(value) != "" || strings.TrimSpace(file) == "" {
		return strings.TrimSpace(value), nil
	}

	raw, err := os.ReadFile(strings.TrimSpace(file))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func newLogger(cfg Config) (*zap.Logger, *systemlog.SystemLogStore, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.App.Env, "development") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log.level: %w", err)
		}
	}
	if cfg.Log.Encoding != "" {
		zapCfg.Encoding = cfg.Log.Encoding
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger failed: %w", err)
	}

	logStore := systemlog.NewSystemLogStore(1000)
	logger = systemlog.WrapZapLogger(logger, logStore)
	return logger, logStore, nil
}

func newDBPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database.url failed: %w", err)
	}

	const maxInt32 = int(^uint32(0) >> 1)
	if cfg.Database.MaxConns > maxInt32 {
		return nil, fmt.Errorf("database.max_conns must be <= %d", maxInt32)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.PingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database failed: %w", err)
	}
	return pool, nil
}

func buildMailer(cfg Config, logger *zap.Logger) mailer.Mailer {
	if strings.EqualFold(cfg.Mail.Provider, "sendgrid") && cfg.Mail.SendgridKey != "" {
		return mailer.NewSendgrid(cfg.Mail.SendgridKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	}
	return mailer.NewConsole(logger)
}

func buildSMSSender(cfg Config, logger *zap.Logger) sms.Sender {
	if strings.EqualFold(cfg.SMS.Provider, "infobip") && cfg.SMS.APIKey != "" {
		return sms.NewInfobipClient(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.Sender, nil)
	}
	return sms.NewLogSender(logger)
}

func buildCORSMiddleware(cfg Config) gin.HandlerFunc {
	origins := make([]string, 0, len(cfg.CORS.AllowOrigins))
	for _, origin := range cfg.CORS.AllowOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		origins = append(origins, trimmed)
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func runMigrateCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}

	migrationDir := "/migrations"
	if _, statErr := os.Stat(migrationDir); statErr != nil {
		migrationDir = "./migrations"
	}

	m, err := migrate.New("file://"+migrationDir, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open migrations failed: %w", err)
	}
	defer m.Close() //nolint:errcheck

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations failed: %w", err)
	}

	fmt.Println("migrations applied successfully")
	return nil
}

func runHealthcheck() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health/ready", cfg.Server.Port))
	if err != nil {
		return 1
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
