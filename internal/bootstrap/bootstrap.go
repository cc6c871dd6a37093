package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/emre/teamforge/internal/app/controllers"
	appMigrations "github.com/emre/teamforge/internal/app/migrations"
	appRepos "github.com/emre/teamforge/internal/app/repositories"
	appRoutes "github.com/emre/teamforge/internal/app/routes"
	appServices "github.com/emre/teamforge/internal/app/services"
	"github.com/emre/teamforge/internal/config"
	"github.com/emre/teamforge/internal/db"
	appMiddleware "github.com/emre/teamforge/internal/middleware"
	pkgAuth "github.com/emre/teamforge/internal/pkg/auth"
	"github.com/emre/teamforge/internal/pkg/email"
	"github.com/emre/teamforge/internal/pkg/filestorage"
	"github.com/emre/teamforge/internal/pkg/gemini"
	"github.com/emre/teamforge/internal/pkg/logger"
	"github.com/emre/teamforge/internal/pkg/metrics"
	"github.com/emre/teamforge/internal/pkg/realtime"
	"github.com/emre/teamforge/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService   appServices.AuthService
	UserService   appServices.UserService
	TeamService   appServices.TeamService
	ChatService   appServices.ChatService
	SearchService appServices.SearchService
	SkillService  appServices.SkillService

	AuthController   *appControllers.AuthController
	UserController   *appControllers.UserController
	TeamController   *appControllers.TeamController
	ChatController   *appControllers.ChatController
	SearchController *appControllers.SearchController
	SkillController  *appControllers.SkillController

	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Hub            *realtime.Hub
	WSHandler      *realtime.Handler
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but don't fail the startup over seed data
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	metrics.Register()

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register custom validators: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(dbPool)

	// File storage base URL must match the static file serving path
	fileStorageBaseURL := strings.TrimRight(cfg.Server.BaseURL, "/") + "/uploads"
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  parseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: parseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	emailService := email.NewService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		BaseURL:   cfg.Server.BaseURL,
	}, lgr)

	ranker := gemini.NewClient(gemini.Config{
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		BaseURL: cfg.AI.BaseURL,
		Timeout: parseDuration(cfg.AI.Timeout, 20*time.Second),
	}, lgr)

	deps.Hub = realtime.NewHub(lgr)
	deps.WSHandler = realtime.NewHandler(deps.Hub, deps.Repos.UserRepository, lgr)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.Repos.VerificationTokenRepository,
		deps.JWTService,
		emailService,
		lgr,
	)
	deps.UserService = appServices.NewUserService(
		deps.Repos.UserRepository,
		deps.Repos.SkillRepository,
		deps.FileStorage,
		deps.Hub,
		lgr,
	)
	deps.TeamService = appServices.NewTeamService(
		deps.Repos.TeamRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.UserRepository,
		deps.Hub,
		lgr,
	)
	deps.ChatService = appServices.NewChatService(
		deps.Repos.ChatRepository,
		deps.Repos.UserRepository,
		deps.Hub,
		lgr,
	)
	deps.SearchService = appServices.NewSearchService(deps.Repos.UserRepository, ranker, lgr)
	deps.SkillService = appServices.NewSkillService(deps.Repos.SkillRepository, deps.Hub, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.UserController = appControllers.NewUserController(deps.UserService)
	deps.TeamController = appControllers.NewTeamController(deps.TeamService)
	deps.ChatController = appControllers.NewChatController(deps.ChatService)
	deps.SearchController = appControllers.NewSearchController(deps.SearchService)
	deps.SkillController = appControllers.NewSkillController(deps.SkillService)

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
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(gin.Recovery())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.TeamController,
		deps.ChatController,
		deps.SearchController,
		deps.SkillController,
		deps.WSHandler,
		deps.AuthMiddleware,
	)

	return router
}

// parseDuration parses a duration string, falling back to a default on error.
// Config validation already rejects malformed values, so the fallback only
// covers empty strings.
func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
