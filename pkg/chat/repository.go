package chat

import (
	"context"
	"errors"
)

// ErrNoHistory é retornado ao apagar o histórico de uma conversa sem mensagens
var ErrNoHistory = errors.New("nenhuma mensagem encontrada para a conversa")

// Repository define a interface para operações de repositório do histórico de chat
type Repository interface {
	// SaveMessage salva uma nova mensagem no histórico
	SaveMessage(ctx context.Context, message *Message) error

	// GetConversationHistory retorna o histórico de uma conversa, mais recentes primeiro
	GetConversationHistory(ctx context.Context, conversationID string, limit, offset int) ([]Message, error)

	// DeleteConversationHistory deleta todo o histórico de uma conversa
	DeleteConversationHistory(ctx context.Context, conversationID string) error

	// CountConversationMessages conta quantas mensagens uma conversa tem
	CountConversationMessages(ctx context.Context, conversationID string) (int, error)
}
