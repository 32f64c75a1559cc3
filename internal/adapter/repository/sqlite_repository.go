package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/hugohenrick/intentbot/pkg/state"
)

// SQLiteStateRepository implementa state.Store sobre sqlite (console local)
type SQLiteStateRepository struct {
	db *sql.DB
}

func NewSQLiteStateRepository(db *sql.DB) *SQLiteStateRepository {
	return &SQLiteStateRepository{db: db}
}

func (r *SQLiteStateRepository) Get(ctx context.Context, scope state.Scope, key string, out interface{}) (bool, error) {
	if key == "" {
		return false, state.ErrEmptyKey
	}

	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM bot_state WHERE scope = ? AND key = ?`,
		string(scope), key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("erro ao buscar estado: %w", err)
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("erro ao decodificar estado %s/%s: %w", scope, key, err)
	}
	return true, nil
}

func (r *SQLiteStateRepository) Set(ctx context.Context, scope state.Scope, key string, value interface{}) error {
	if key == "" {
		return state.ErrEmptyKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("erro ao codificar estado %s/%s: %w", scope, key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bot_state (scope, key, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(scope), key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("erro ao salvar estado: %w", err)
	}
	return nil
}

func (r *SQLiteStateRepository) Delete(ctx context.Context, scope state.Scope, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bot_state WHERE scope = ? AND key = ?`, string(scope), key); err != nil {
		return fmt.Errorf("erro ao remover estado: %w", err)
	}
	return nil
}

// SQLiteChatRepository guarda o histórico das conversas no sqlite
type SQLiteChatRepository struct {
	db *sql.DB
}

func NewSQLiteChatRepository(db *sql.DB) *SQLiteChatRepository {
	return &SQLiteChatRepository{db: db}
}

func (r *SQLiteChatRepository) SaveMessage(ctx context.Context, message *chat.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_history (id, conversation_id, user_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.ConversationID, message.UserID, message.Role, message.Content, message.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("erro ao salvar mensagem: %w", err)
	}
	return nil
}

func (r *SQLiteChatRepository) GetConversationHistory(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, role, content, created_at
		FROM chat_history
		WHERE conversation_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("erro ao ler mensagem: %w", err)
		}
		msg.ConversationID = conversationID
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}
	return messages, nil
}

func (r *SQLiteChatRepository) DeleteConversationHistory(ctx context.Context, conversationID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chat_history WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("erro ao deletar histórico: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao deletar histórico: %w", err)
	}
	if n == 0 {
		return chat.ErrNoHistory
	}
	return nil
}

func (r *SQLiteChatRepository) CountConversationMessages(ctx context.Context, conversationID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_history WHERE conversation_id = ?`, conversationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar mensagens: %w", err)
	}
	return count, nil
}
