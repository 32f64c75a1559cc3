package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/hugohenrick/intentbot/pkg/turn"
)

// ActivityRequest representa uma atividade enviada por um canal
type ActivityRequest struct {
	Type           string `json:"type" example:"message"`
	Name           string `json:"name,omitempty" example:""`
	Text           string `json:"text,omitempty" example:"sum"`
	Value          string `json:"value,omitempty"`
	ConversationID string `json:"conversation_id" binding:"required" example:"c-42"`
}

// Validate verifica a combinação de tipo e conteúdo
func (r *ActivityRequest) Validate() string {
	if r.Type == "" {
		r.Type = turn.TypeMessage
	}
	switch r.Type {
	case turn.TypeMessage:
		if strings.TrimSpace(r.Text) == "" {
			return "text é obrigatório para mensagens"
		}
	case turn.TypeEvent:
		if r.Name == "" {
			return "name é obrigatório para eventos"
		}
		// tokens chegam só pelo callback OAuth
		if r.Name == turn.EventTokenResponse {
			return "evento " + turn.EventTokenResponse + " é reservado ao servidor"
		}
	case turn.TypeConversationUpdate:
	default:
		return "tipo de atividade desconhecido: " + r.Type
	}
	return ""
}

// ToActivity converte a requisição na atividade do turno
func (r ActivityRequest) ToActivity(channelID, userID, userName string) turn.Activity {
	return turn.Activity{
		ID:             uuid.New().String(),
		Type:           r.Type,
		Name:           r.Name,
		Text:           r.Text,
		Value:          r.Value,
		ChannelID:      channelID,
		UserID:         userID,
		UserName:       userName,
		ConversationID: r.ConversationID,
		Timestamp:      time.Now().UTC(),
	}
}

// ActivityResponse representa as respostas do bot a uma atividade
type ActivityResponse struct {
	ConversationID string         `json:"conversation_id"`
	Messages       []turn.Message `json:"messages"`
}

// HistoryResponse representa uma página do histórico de uma conversa
type HistoryResponse struct {
	Messages   []chat.Message `json:"messages"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// NewHistoryResponse cria a página do histórico
func NewHistoryResponse(messages []chat.Message, totalCount int, p PaginationParams) HistoryResponse {
	return HistoryResponse{
		Messages:   messages,
		TotalCount: totalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: calculateTotalPages(totalCount, p.PageSize),
	}
}

// SignInResponse representa o resultado do callback de login
type SignInResponse struct {
	MagicCode string `json:"magic_code"`
	Delivered int    `json:"delivered"`
}

// Tipos de frame do websocket
const (
	FrameMessage = "message"
	FrameError   = "error"
)

// StreamFrame é o frame enviado pelo bot no websocket
type StreamFrame struct {
	Type    string        `json:"type"`
	Message *turn.Message `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}
