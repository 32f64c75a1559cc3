package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/intentbot/internal/adapter/api/controller"
)

// ConfigureOAuthRoutes configura o callback de login. Não exige autenticação: o state do link
// identifica o usuário.
func ConfigureOAuthRoutes(router *gin.RouterGroup, oauthController *controller.OAuthController) {
	oauthGroup := router.Group("/oauth")
	{
		oauthGroup.GET("/callback", oauthController.Callback)
	}
}
