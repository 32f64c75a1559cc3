// Package state define o armazenamento durável de estado do bot, com escopos por conversa e por
// usuário, e acessores tipados com semântica de "get-or-create".
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Scope identifica o escopo de um valor persistido
type Scope string

const (
	ScopeConversation Scope = "conversation"
	ScopeUser         Scope = "user"
	ScopeSignIn       Scope = "signin"
)

// ErrEmptyKey é retornado quando a chave está vazia
var ErrEmptyKey = errors.New("chave de estado vazia")

// Store é o armazenamento durável de documentos JSON por escopo e chave
type Store interface {
	// Get carrega o valor em out. found é false quando a chave não existe.
	Get(ctx context.Context, scope Scope, key string, out interface{}) (found bool, err error)

	// Set grava (ou substitui) o valor
	Set(ctx context.Context, scope Scope, key string, value interface{}) error

	// Delete remove o valor. Remover uma chave inexistente não é erro.
	Delete(ctx context.Context, scope Scope, key string) error
}

// Accessor é um acessor tipado para uma propriedade de estado
type Accessor[T any] struct {
	store    Store
	scope    Scope
	property string
}

// NewAccessor cria um acessor para a propriedade no escopo informado
func NewAccessor[T any](store Store, scope Scope, property string) *Accessor[T] {
	return &Accessor[T]{store: store, scope: scope, property: property}
}

func (a *Accessor[T]) key(id string) string {
	return id + "/" + a.property
}

// Get retorna o valor armazenado ou um novo valor zero quando ausente
func (a *Accessor[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, ErrEmptyKey
	}

	value := new(T)
	if _, err := a.store.Get(ctx, a.scope, a.key(id), value); err != nil {
		return nil, fmt.Errorf("erro ao ler %s/%s: %w", a.scope, a.property, err)
	}
	return value, nil
}

// Set grava o valor
func (a *Accessor[T]) Set(ctx context.Context, id string, value *T) error {
	if id == "" {
		return ErrEmptyKey
	}
	if err := a.store.Set(ctx, a.scope, a.key(id), value); err != nil {
		return fmt.Errorf("erro ao gravar %s/%s: %w", a.scope, a.property, err)
	}
	return nil
}

// Delete remove o valor
func (a *Accessor[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyKey
	}
	return a.store.Delete(ctx, a.scope, a.key(id))
}

// MemoryStore é um Store em memória. Os valores são copiados via JSON, então nenhum chamador
// compartilha estruturas mutáveis com outro.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Scope]map[string][]byte
}

// NewMemoryStore cria um MemoryStore vazio
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Scope]map[string][]byte)}
}

// Get implementa Store
func (s *MemoryStore) Get(ctx context.Context, scope Scope, key string, out interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	s.mu.RLock()
	raw, ok := s.data[scope][key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("erro ao decodificar %s/%s: %w", scope, key, err)
	}
	return true, nil
}

// Set implementa Store
func (s *MemoryStore) Set(ctx context.Context, scope Scope, key string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrEmptyKey
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("erro ao codificar %s/%s: %w", scope, key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[scope] == nil {
		s.data[scope] = make(map[string][]byte)
	}
	s.data[scope][key] = raw
	return nil
}

// Delete implementa Store
func (s *MemoryStore) Delete(ctx context.Context, scope Scope, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[scope], key)
	return nil
}

// Len retorna quantas chaves existem no escopo
func (s *MemoryStore) Len(scope Scope) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[scope])
}
