package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/intentbot/internal/adapter/api/dto"
	"github.com/hugohenrick/intentbot/internal/adapter/api/stream"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/signin"
)

// OAuthController conclui os logins iniciados pelo cartão de login
type OAuthController struct {
	provider *signin.Provider
	hub      *stream.Hub
	logger   logger.Logger
}

// NewOAuthController cria uma nova instância de OAuthController
func NewOAuthController(provider *signin.Provider, hub *stream.Hub, logger logger.Logger) *OAuthController {
	return &OAuthController{
		provider: provider,
		hub:      hub,
		logger:   logger,
	}
}

// Callback recebe o redirecionamento do provedor de identidade
// @Summary Callback OAuth
// @Description Troca o code pelo token, entrega o token às conversas abertas do usuário e retorna o código mágico
// @Tags oauth
// @Produce json
// @Param state query string true "State emitido no link de login"
// @Param code query string true "Authorization code"
// @Success 200 {object} dto.SuccessResponse{data=dto.SignInResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /oauth/callback [get]
func (c *OAuthController) Callback(ctx *gin.Context) {
	if providerErr := ctx.Query("error"); providerErr != "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Login recusado", providerErr+": "+ctx.Query("error_description")))
		return
	}

	nonce, code := ctx.Query("state"), ctx.Query("code")
	if nonce == "" || code == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", "state e code são obrigatórios"))
		return
	}

	completion, err := c.provider.Complete(ctx.Request.Context(), nonce, code)
	if err != nil {
		if errors.Is(err, signin.ErrUnknownState) {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Link de login inválido", err.Error()))
			return
		}
		c.logger.Error("Sign-in callback failed", "error", err)
		ctx.JSON(http.StatusBadGateway, dto.NewErrorResponse(http.StatusBadGateway, "Erro ao concluir login", err.Error()))
		return
	}

	delivered := c.hub.NotifyToken(ctx.Request.Context(), completion.UserID)
	c.logger.Info("Sign-in delivered", "user_id", completion.UserID, "sessions", delivered)

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
		"Login concluído. Se a conversa não continuar sozinha, digite o código no chat.",
		dto.SignInResponse{MagicCode: completion.MagicCode, Delivered: delivered},
	))
}
