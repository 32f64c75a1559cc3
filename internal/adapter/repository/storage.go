package repository

import (
	"github.com/hugohenrick/intentbot/internal/infrastructure/database"
	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/hugohenrick/intentbot/pkg/state"
)

// Storage agrupa o armazenamento de estado e o histórico de um mesmo backend
type Storage struct {
	State   state.Store
	History chat.Repository
	close   func()
}

// Close libera as conexões do backend
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage abre o backend configurado em STATE_STORE
func OpenStorage(cfg *config.Config) (*Storage, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return &Storage{State: state.NewMemoryStore(), History: chat.NewMemoryRepository()}, nil
	case config.StoreSQLite:
		db, err := database.NewSQLiteDB(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Storage{
			State:   NewSQLiteStateRepository(db),
			History: NewSQLiteChatRepository(db),
			close:   func() { db.Close() },
		}, nil
	default:
		pool, err := database.NewPostgresDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		return &Storage{
			State:   NewStateRepository(pool),
			History: NewChatRepository(pool),
			close:   pool.Close,
		}, nil
	}
}
