package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"main/config"
	"main/handler"
	"main/middleware"
	"main/repository"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"JWT_SECRET_KEY",
		"JWT_EXPIRATION_TIME",
		"REFRESH_TOKEN_EXPIRATION_TIME",
	}

	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	utils.InitValidator()
	utils.InitJWT()
	if os.Getenv("GO_ENV") != "test" {
		dbCfg := config.LoadDatabaseConfig()
		utils.InitMongoClient(dbCfg.URI, dbCfg.MaxPoolSize, dbCfg.MinPoolSize, dbCfg.MaxConnIdleTime, dbCfg.RetryWrites)
	}
}

func setupRouter(store repository.SessionStore, userRepo *repository.UserRepo, tracker *usecase.SessionTracker, probe usecase.EnvironmentProbe) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userService := &usecase.UserService{UsersRepo: userRepo}

	public := router.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", func(c *gin.Context) {
				handler.RegistrationHandler(c, userService)
			})
			auth.POST("/login", func(c *gin.Context) {
				handler.LoginHandler(c, userRepo, tracker)
			})
		}
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	protected.Use(middleware.ActivityMiddleware(tracker))
	{
		protected.POST("/auth/logout", func(c *gin.Context) {
			handler.LogoutHandler(c, tracker)
		})

		sessions := protected.Group("/sessions")
		{
			sessions.POST("/start", func(c *gin.Context) {
				handler.StartSessionHandler(c, store, probe)
			})
			sessions.POST("/events", func(c *gin.Context) {
				handler.LogSessionEventHandler(c, store)
			})
			sessions.POST("/end", func(c *gin.Context) {
				handler.EndSessionHandler(c, store)
			})
			sessions.GET("/current", func(c *gin.Context) {
				handler.CurrentSessionHandler(c, tracker)
			})
		}

		protected.GET("/stats", func(c *gin.Context) {
			handler.StatsHandler(c, tracker)
		})
	}

	return router
}

func main() {
	// Redis is optional: without it the service runs uncached and
	// without token blacklisting, both logged as warnings.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err := services.NewSessionCache(redisURL)
		if err != nil {
			log.Printf("Warning: session cache disabled: %v", err)
		} else {
			services.GlobalSessionCache = cache
		}

		blacklist, err := services.NewTokenBlacklist(redisURL)
		if err != nil {
			log.Printf("Warning: token blacklist disabled: %v", err)
		} else {
			services.TokenBlacklist = blacklist
		}
	}

	store := repository.GetMongoStore(utils.MongoClient)
	userRepo := repository.GetUserRepo(utils.MongoClient)

	tracker := usecase.NewSessionTracker(store, config.LoadTrackerConfig())
	tracker.Probe = utils.NewEnvProbe()
	tracker.CheckCredential = func(ctx context.Context, userID string) bool {
		user, err := userRepo.FindUserByID(ctx, userID)
		return err == nil && user != nil
	}
	defer tracker.Close()

	router := setupRouter(store, userRepo, tracker, tracker.Probe)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	serverAddr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
