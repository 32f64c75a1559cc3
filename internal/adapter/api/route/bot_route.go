package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/intentbot/internal/adapter/api/controller"
	"github.com/hugohenrick/intentbot/pkg/auth"
)

// ConfigureBotRoutes configura as rotas do bot
func ConfigureBotRoutes(router *gin.RouterGroup, botController *controller.BotController, jwtService *auth.JWTService) {
	// Todas as rotas do bot exigem o token do canal
	botGroup := router.Group("/bot")
	botGroup.Use(auth.JWTAuthMiddleware(jwtService))
	{
		botGroup.POST("/messages", botController.PostActivity)
		botGroup.GET("/stream", botController.Stream)
		botGroup.GET("/conversations/:conversation_id/history", botController.GetHistory)
		botGroup.DELETE("/conversations/:conversation_id/history", botController.DeleteHistory)
	}
}
