package app

import (
	"context"
	"fmt"
	"time"

	"dts_backend/internal/config"
	"dts_backend/internal/database"
	"dts_backend/internal/handlers"
	"dts_backend/internal/logger"
	"dts_backend/internal/middleware"
	"dts_backend/internal/ratelimit"
	"dts_backend/internal/repositories"
	"dts_backend/internal/routes"
	"dts_backend/internal/services"
	"dts_backend/internal/validator"
	"dts_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	if err := database.SeedSecurityQuestions(gormDB); err != nil {
		logger.Fatal("Failed to seed security questions", "error", err)
	}
	if err := database.SeedStations(gormDB); err != nil {
		logger.Fatal("Failed to seed stations", "error", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// Лимитер без redis откажет в восстановлении пароля, но
		// остальному сервису redis не нужен.
		logger.Warn("Redis unavailable, password recovery will be degraded", "error", err)
	} else {
		logger.Info("Redis connected", "addr", cfg.Redis.Addr)
	}

	ginRouter := SetupRouter(cfg, gormDB, redisClient)

	startWorkers(context.Background(), gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает полный HTTP-роутер: репозитории, сервисы,
// хэндлеры, middleware, маршруты.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client) *gin.Engine {
	serviceContainer := initializeServices(cfg, gormDB, redisClient)

	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter()

	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client) *services.ServiceContainer {
	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository(gormDB)
	profileRepo := repositories.NewProfileRepository(gormDB)
	stationRepo := repositories.NewStationRepository(gormDB)
	bookingRepo := repositories.NewBookingRepository(gormDB)
	securityRepo := repositories.NewSecurityRepository(gormDB)

	recoveryLimiter := ratelimit.NewRecoveryLimiter(
		redisClient,
		cfg.Recovery.MaxAttempts,
		time.Duration(cfg.Recovery.AttemptWindowMinutes)*time.Minute,
	)

	// --- Инициализация сервисов ---
	authService := services.NewAuthService(userRepo, profileRepo)
	profileService := services.NewProfileService(profileRepo, userRepo, stationRepo)
	bookingService := services.NewBookingService(bookingRepo, stationRepo, profileRepo, userRepo, cfg)
	recoveryService := services.NewRecoveryService(userRepo, securityRepo, recoveryLimiter, cfg)
	stationService := services.NewStationService(stationRepo)

	return &services.ServiceContainer{
		AuthService:     authService,
		ProfileService:  profileService,
		BookingService:  bookingService,
		RecoveryService: recoveryService,
		StationService:  stationService,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(baseHandler, services.AuthService),
		ProfileHandler:  handlers.NewProfileHandler(baseHandler, services.ProfileService),
		BookingHandler:  handlers.NewBookingHandler(baseHandler, services.BookingService),
		RecoveryHandler: handlers.NewRecoveryHandler(baseHandler, services.RecoveryService),
		StationHandler:  handlers.NewStationHandler(baseHandler, services.StationService),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

func startWorkers(ctx context.Context, gormDB *gorm.DB) {
	bookingWorker := workers.NewBookingWorker(
		repositories.NewBookingRepository(gormDB),
		repositories.NewSecurityRepository(gormDB),
		repositories.NewUserRepository(gormDB),
	)
	bookingWorker.Start(ctx)
	logger.Info("Booking worker started")
}
