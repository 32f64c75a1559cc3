package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository guarda o histórico das conversas no PostgreSQL
type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) chat.Repository {
	return &ChatRepository{
		db: db,
	}
}

func (r *ChatRepository) SaveMessage(ctx context.Context, message *chat.Message) error {
	// Se o ID da mensagem estiver vazio, gerar um novo
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_history (id, conversation_id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		message.ID,
		message.ConversationID,
		message.UserID,
		message.Role,
		message.Content,
		message.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("erro ao salvar mensagem: %w", err)
	}

	return nil
}

func (r *ChatRepository) GetConversationHistory(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, role, content, created_at
		FROM chat_history
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var msg chat.Message
		err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Role,
			&msg.Content,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler mensagem: %w", err)
		}
		msg.ConversationID = conversationID
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return messages, nil
}

func (r *ChatRepository) DeleteConversationHistory(ctx context.Context, conversationID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM chat_history WHERE conversation_id = $1`, conversationID)
	if err != nil {
		return fmt.Errorf("erro ao deletar histórico: %w", err)
	}

	if result.RowsAffected() == 0 {
		return chat.ErrNoHistory
	}

	return nil
}

func (r *ChatRepository) CountConversationMessages(ctx context.Context, conversationID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chat_history WHERE conversation_id = $1`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar mensagens: %w", err)
	}

	return count, nil
}
