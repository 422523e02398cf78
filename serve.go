package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/PressTune/controllers"
	"github.com/PressTune/initializers"
	"github.com/PressTune/middlewares"
	"github.com/PressTune/models"
	"github.com/PressTune/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := initializers.AppConfig

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	if err := initializers.ConnectDB(cfg.DB_URL); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := services.InitAuthService(cfg); err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}
	services.InitEmailService(cfg.ResendAPIKey, cfg.EmailFrom)

	hub := services.InitCommentHub()
	defer hub.Stop()

	go func() {
		if err := services.ListenForCommentChanges(ctx, cfg.DB_URL, hub); err != nil {
			log.Printf("Comment change listener stopped: %v", err)
		}
	}()

	router, err := setupRouter(cfg)
	if err != nil {
		return err
	}

	log.Printf("Listening on :%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}

func setupRouter(cfg *initializers.Config) (*gin.Engine, error) {
	router := gin.Default()

	sessionMiddleware, err := middlewares.Sessions(cfg.SessionSecret, gin.Mode() == gin.ReleaseMode)
	if err != nil {
		return nil, fmt.Errorf("failed to set up sessions: %w", err)
	}
	router.Use(middlewares.CORS(middlewares.DefaultCORSConfig(cfg.AllowedOrigins)))
	router.Use(sessionMiddleware)

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return c.ClientIP()
	}

	router.GET("/ping", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.Ping)

	if gin.Mode() != gin.ReleaseMode {
		// Test endpoint for email service (never routed in release mode)
		router.POST("/test/email", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.TestReplyEmail)
	}

	api := router.Group("/api")
	{
		api.GET("/comments", middlewares.LoadAuth, controllers.GetComments)
		api.GET("/comments/realtime", controllers.SubscribeComments)

		api.POST("/auth/session", middlewares.RateLimitMiddleware(2, 5, getKey), controllers.CreateSession)
		api.GET("/auth/session", middlewares.LoadAuth, controllers.GetSession)
		api.DELETE("/auth/session", middlewares.LoadAuth, controllers.DeleteSession)

		auth := api.Group("/")
		auth.Use(middlewares.CheckAuth)
		auth.Use(middlewares.RateLimitMiddleware(1, 10, middlewares.UserOrIPKey("comments")))
		{
			auth.POST("/comments", controllers.CreateComment)
			auth.PUT("/comments/:id", controllers.UpdateComment)
			auth.DELETE("/comments/:id", controllers.DeleteComment)
			auth.POST("/comments/:id/vote", controllers.VoteComment)

			if cfg.AllowModeratorDelete {
				admin := auth.Group("/admin")
				admin.Use(middlewares.RequireRole(models.RoleModerator))
				{
					admin.DELETE("/comments/:id", controllers.ModeratorDeleteComment)
				}
			}
		}
	}

	return router, nil
}
