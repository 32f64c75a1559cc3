package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/intentbot/internal/adapter/api/dto"
	"github.com/hugohenrick/intentbot/internal/adapter/api/stream"
	"github.com/hugohenrick/intentbot/pkg/auth"
	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/turn"
)

// BotController recebe as atividades dos canais e expõe o histórico das conversas
type BotController struct {
	bot     stream.TurnHandler
	history chat.Repository
	hub     *stream.Hub
	logger  logger.Logger
}

// NewBotController cria uma nova instância de BotController
func NewBotController(bot stream.TurnHandler, history chat.Repository, hub *stream.Hub, logger logger.Logger) *BotController {
	return &BotController{
		bot:     bot,
		history: history,
		hub:     hub,
		logger:  logger,
	}
}

// PostActivity processa uma atividade e devolve as respostas do bot
// @Summary Envia uma atividade ao bot
// @Description Processa uma mensagem ou evento do canal e retorna as mensagens do bot no turno
// @Tags bot
// @Accept json
// @Produce json
// @Param activity body dto.ActivityRequest true "Atividade"
// @Success 200 {object} dto.ActivityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security Bearer
// @Router /bot/messages [post]
func (c *BotController) PostActivity(ctx *gin.Context) {
	var request dto.ActivityRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", err.Error()))
		return
	}
	if msg := request.Validate(); msg != "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Atividade inválida", msg))
		return
	}

	channelID, userID, userName := auth.GetCurrentUser(ctx)
	buf := turn.NewBuffer(request.ToActivity(channelID, userID, userName))

	if err := c.bot.OnTurn(ctx.Request.Context(), buf); err != nil {
		c.logger.Error("Failed to process activity", "conversation_id", request.ConversationID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao processar atividade", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ActivityResponse{
		ConversationID: request.ConversationID,
		Messages:       buf.Sent(),
	})
}

// GetHistory retorna o histórico de uma conversa
// @Summary Histórico da conversa
// @Description Retorna as mensagens da conversa, das mais recentes para as mais antigas
// @Tags bot
// @Produce json
// @Param conversation_id path string true "ID da conversa"
// @Param page query int false "Página" default(1)
// @Param page_size query int false "Itens por página" default(10)
// @Success 200 {object} dto.HistoryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security Bearer
// @Router /bot/conversations/{conversation_id}/history [get]
func (c *BotController) GetHistory(ctx *gin.Context) {
	conversationID := ctx.Param("conversation_id")
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "10"))
	pagination := dto.GetPagination(page, pageSize)

	messages, err := c.history.GetConversationHistory(ctx.Request.Context(), conversationID, pagination.PageSize, pagination.Offset())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao buscar histórico", err.Error()))
		return
	}

	total, err := c.history.CountConversationMessages(ctx.Request.Context(), conversationID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao contar mensagens", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewHistoryResponse(messages, total, pagination))
}

// DeleteHistory apaga o histórico de uma conversa
// @Summary Apaga o histórico da conversa
// @Tags bot
// @Produce json
// @Param conversation_id path string true "ID da conversa"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security Bearer
// @Router /bot/conversations/{conversation_id}/history [delete]
func (c *BotController) DeleteHistory(ctx *gin.Context) {
	conversationID := ctx.Param("conversation_id")

	if err := c.history.DeleteConversationHistory(ctx.Request.Context(), conversationID); err != nil {
		if errors.Is(err, chat.ErrNoHistory) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Histórico não encontrado", err.Error()))
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao apagar histórico", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Histórico apagado com sucesso", nil))
}

// Stream abre um websocket para a conversa
// @Summary Websocket da conversa
// @Description Abre um websocket; o cliente envia dto.ActivityRequest e recebe dto.StreamFrame
// @Tags bot
// @Param conversation_id query string true "ID da conversa"
// @Param access_token query string false "Token do canal (alternativa ao cabeçalho Authorization)"
// @Success 101
// @Failure 400 {object} dto.ErrorResponse
// @Security Bearer
// @Router /bot/stream [get]
func (c *BotController) Stream(ctx *gin.Context) {
	conversationID := ctx.Query("conversation_id")
	if conversationID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Requisição inválida", "conversation_id é obrigatório"))
		return
	}

	channelID, userID, userName := auth.GetCurrentUser(ctx)
	c.hub.Serve(ctx.Writer, ctx.Request, &stream.Session{
		ChannelID:      channelID,
		UserID:         userID,
		UserName:       userName,
		ConversationID: conversationID,
	})
}
