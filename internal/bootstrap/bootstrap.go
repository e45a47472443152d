package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/placement/internal/app/auth"
	appControllers "github.com/yigit/placement/internal/app/controllers"
	appMigrations "github.com/yigit/placement/internal/app/migrations"
	appRepos "github.com/yigit/placement/internal/app/repositories"
	appRoutes "github.com/yigit/placement/internal/app/routes"
	appServices "github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/config"
	"github.com/yigit/placement/internal/db"
	appMiddleware "github.com/yigit/placement/internal/middleware"
	pkgAuth "github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/email"
	"github.com/yigit/placement/internal/pkg/filestorage"
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/logger"
	"github.com/yigit/placement/internal/pkg/session"
	"github.com/yigit/placement/internal/pkg/validation"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService           *appServices.AuthService
	InvitationService     *appServices.InvitationService
	ProfileService        *appServices.ProfileService
	JobService            *appServices.JobService
	ApplicationService    *appServices.ApplicationService
	MessageService        *appServices.MessageService
	AuthController        *appControllers.AuthController
	UserController        *appControllers.UserController
	ProfileController     *appControllers.ProfileController
	JobController         *appControllers.JobController
	ApplicationController *appControllers.ApplicationController
	MessageController     *appControllers.MessageController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	AuthzService          *appAuth.AuthorizationService
	Sessions              *session.RevocationStore
	Logger                zerolog.Logger
	FileStorage           *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := config.GetEnv("MIGRATIONS_DIR", "migrations")
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupSessions connects the optional Redis revocation store. Without a
// configured address, or when Redis is unreachable, logout only clears the
// cookie.
func SetupSessions(cfg *config.Config, lgr zerolog.Logger) *session.RevocationStore {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured, session revocation disabled")
		return session.NewRevocationStore(nil)
	}

	client, err := session.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, session revocation disabled")
		return session.NewRevocationStore(nil)
	}
	return session.NewRevocationStore(client)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, sessions *session.RevocationStore, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Sessions: sessions}

	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 168*time.Hour),
		InvitationExp:  helpers.ParseDuration(cfg.JWT.InvitationExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	sender := email.NewSender(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger.Component("email"))
	if !cfg.SMTPEnabled() {
		lgr.Warn().Msg("SMTP not configured, outgoing emails will only be logged")
	}

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.UserRepository)

	notifications := appServices.NewNotificationService(sender, deps.Repos.UserRepository, logger.Component("notifications"))

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, sessions, logger.Component("auth"))
	deps.InvitationService = appServices.NewInvitationService(
		deps.Repos.UserRepository,
		deps.JWTService,
		sender,
		cfg.Server.FrontendURL,
		logger.Component("invitations"),
	)
	deps.ProfileService = appServices.NewProfileService(deps.AuthzService, deps.Repos.ProfileRepository, logger.Component("profiles"))
	deps.JobService = appServices.NewJobService(
		deps.Repos.JobRepository,
		func(tx pgx.Tx) appServices.JobTxStore { return deps.Repos.JobRepository.WithTx(tx) },
		database,
		deps.Repos.ProfileRepository,
		deps.AuthzService,
		deps.FileStorage,
		notifications,
		cfg.Server.FrontendURL,
		logger.Component("jobs"),
	)
	deps.ApplicationService = appServices.NewApplicationService(deps.Repos.ApplicationRepository, deps.Repos.JobRepository, logger.Component("applications"))
	deps.MessageService = appServices.NewMessageService(deps.Repos.MessageRepository, deps.AuthzService, notifications, logger.Component("messages"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, cfg.JWT.CookieSecure, lgr)
	deps.UserController = appControllers.NewUserController(deps.InvitationService, deps.AuthService, lgr)
	deps.ProfileController = appControllers.NewProfileController(deps.ProfileService, lgr)
	deps.JobController = appControllers.NewJobController(deps.JobService, lgr)
	deps.ApplicationController = appControllers.NewApplicationController(deps.ApplicationService, lgr)
	deps.MessageController = appControllers.NewMessageController(deps.MessageService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(appMiddleware.CORS(cfg.AllowedOrigins()))
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.ProfileController,
		deps.JobController,
		deps.ApplicationController,
		deps.MessageController,
		deps.AuthMiddleware,
	)

	return router
}
