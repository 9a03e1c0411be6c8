package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/noracami/my-12-week-year/cache"
	"github.com/noracami/my-12-week-year/db"
	"github.com/noracami/my-12-week-year/handlers"
	"github.com/noracami/my-12-week-year/middleware"
	"github.com/noracami/my-12-week-year/models"
	"github.com/noracami/my-12-week-year/routes"
	"github.com/noracami/my-12-week-year/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	utils.InitLogger()
	defer utils.Logger.Sync()
	utils.InitMetrics()

	utils.Logger.Info("starting_application")

	db.Connect()
	if err := db.DB.AutoMigrate(
		&models.User{},
		&models.Quarter{},
		&models.Tactic{},
		&models.Record{},
		&models.WeekSelection{},
	); err != nil {
		utils.Logger.Fatal("migration_failed", zap.Error(err))
	}

	if err := cache.InitRedis(utils.Logger); err != nil {
		utils.Logger.Fatal("redis_init_failed", zap.Error(err))
	}
	defer cache.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())

	if key := os.Getenv("CSRF_AUTH_KEY"); key != "" {
		r.Use(middleware.CSRFProtection([]byte(key)))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now(),
			"database":  "connected",
		})
	})

	// Public endpoints, rate-limited against credential stuffing
	public := r.Group("/api")
	public.Use(middleware.RateLimitMiddleware(20, time.Minute))
	{
		public.POST("/register", routes.Register)
		public.POST("/login", routes.Login)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/profile", routes.Profile)
		api.PUT("/profile", routes.UpdateProfile)

		api.GET("/users", middleware.RoleMiddleware(models.RoleAdmin), routes.ListUsers)

		api.GET("/tactics", handlers.GetTactics)
		api.POST("/tactics", handlers.CreateTactic)
		api.PUT("/tactics/:id", handlers.UpdateTactic)
		api.DELETE("/tactics/:id", handlers.DeleteTactic)

		api.GET("/records", middleware.CacheMiddleware(time.Minute), handlers.GetRecords)
		api.POST("/records", handlers.UpsertRecord)
		api.DELETE("/records/:id", handlers.DeleteRecord)
		api.GET("/records/score", handlers.GetScore)

		api.GET("/week-selections", handlers.GetWeekSelection)
		api.PUT("/week-selections", handlers.PutWeekSelection)
		api.DELETE("/week-selections", handlers.DeleteWeekSelection)

		api.GET("/quarters", handlers.GetQuarters)
		api.GET("/quarters/active", handlers.GetActiveQuarter)
		api.GET("/quarters/:id", handlers.GetQuarter)
		api.POST("/quarters", handlers.CreateQuarter)
		api.PUT("/quarters/:id", handlers.UpdateQuarter)
		api.DELETE("/quarters/:id", handlers.DeleteQuarter)
		api.GET("/quarters/:id/scoreboard", handlers.GetQuarterScoreboard)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	startServer(r)
}

func startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	utils.Logger.Info("starting_http_server", zap.String("port", port))
	fmt.Printf("12-week-year backend listening on http://localhost:%s\n", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("shutting_down_server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal("server_forced_shutdown", zap.Error(err))
	}

	utils.Logger.Info("server_stopped")
}
