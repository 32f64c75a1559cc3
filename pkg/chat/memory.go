package chat

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository guarda o histórico em memória
type MemoryRepository struct {
	mu       sync.RWMutex
	messages map[string][]Message
}

// NewMemoryRepository cria um repositório em memória vazio
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{messages: make(map[string][]Message)}
}

// SaveMessage implementa Repository
func (r *MemoryRepository) SaveMessage(ctx context.Context, message *Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], *message)
	return nil
}

// GetConversationHistory implementa Repository
func (r *MemoryRepository) GetConversationHistory(ctx context.Context, conversationID string, limit, offset int) ([]Message, error) {
	r.mu.RLock()
	all := make([]Message, len(r.messages[conversationID]))
	copy(all, r.messages[conversationID])
	r.mu.RUnlock()

	// mais recentes primeiro; mensagens com o mesmo horário mantêm a ordem inversa de gravação
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })

	if offset >= len(all) {
		return []Message{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// DeleteConversationHistory implementa Repository
func (r *MemoryRepository) DeleteConversationHistory(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages[conversationID]) == 0 {
		return ErrNoHistory
	}
	delete(r.messages, conversationID)
	return nil
}

// CountConversationMessages implementa Repository
func (r *MemoryRepository) CountConversationMessages(ctx context.Context, conversationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages[conversationID]), nil
}
