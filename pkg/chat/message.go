package chat

import "time"

// Papéis das mensagens no histórico
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message representa uma mensagem no histórico da conversa
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}
