package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Simhateja17/whatsapp/config"
	"github.com/Simhateja17/whatsapp/controllers"
	"github.com/Simhateja17/whatsapp/middlewares"
	"github.com/Simhateja17/whatsapp/services"
	"github.com/Simhateja17/whatsapp/ws"
)

// Register builds the engine and wires all routes.
func Register(
	cfg *config.Config,
	auth *controllers.AuthController,
	users *controllers.UserController,
	conversations *controllers.ConversationController,
	hub *ws.Hub,
	tokens *services.TokenService,
	db *gorm.DB,
) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/ws", controllers.WSController(hub))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/auth/request-otp", auth.RequestOTP)
	api.POST("/auth/verify-otp", auth.VerifyOTP)

	protected := api.Group("")
	protected.Use(middlewares.TokenAuthMiddleware(tokens, db))
	{
		protected.GET("/conversations/:id", conversations.GetByID)
		protected.GET("/conversations/:id/messages", conversations.GetMessages)
		protected.GET("/conversations/user/:userId", conversations.ListForUser)
		protected.POST("/conversations/initiate", conversations.Initiate)
		protected.GET("/users/search", users.Search)
	}

	return r
}
