package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/intentbot/internal/adapter/api/dto"
)

// Chaves das claims no contexto do gin
const (
	ContextChannelID = "channel_id"
	ContextUserID    = "user_id"
	ContextUserName  = "user_name"
)

// JWTAuthMiddleware cria um middleware para autenticação dos canais. O token vem do cabeçalho
// Authorization ou, para websockets abertos pelo navegador, do parâmetro access_token.
func JWTAuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			message := "Token inválido"
			if errors.Is(err, ErrExpiredToken) {
				message = "Token expirado"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				http.StatusUnauthorized,
				message,
				err.Error(),
			))
			return
		}

		// Armazenar as claims no contexto
		c.Set(ContextChannelID, claims.ChannelID)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserName, claims.UserName)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("access_token"); token != "" {
			return token, true
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			http.StatusUnauthorized,
			"Autenticação requerida",
			"O cabeçalho Authorization não foi fornecido",
		))
		return "", false
	}

	// Verificar o formato "Bearer <token>"
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			http.StatusUnauthorized,
			"Formato de token inválido",
			"Use o formato 'Bearer <token>'",
		))
		return "", false
	}
	return tokenParts[1], true
}

// GetCurrentUser obtém o canal e o usuário autenticados do contexto
func GetCurrentUser(c *gin.Context) (channelID, userID, userName string) {
	return c.GetString(ContextChannelID), c.GetString(ContextUserID), c.GetString(ContextUserName)
}
