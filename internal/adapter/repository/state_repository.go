package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hugohenrick/intentbot/pkg/state"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StateRepository implementa state.Store na tabela bot_state do PostgreSQL
type StateRepository struct {
	db *pgxpool.Pool
}

func NewStateRepository(db *pgxpool.Pool) state.Store {
	return &StateRepository{db: db}
}

func (r *StateRepository) Get(ctx context.Context, scope state.Scope, key string, out interface{}) (bool, error) {
	if key == "" {
		return false, state.ErrEmptyKey
	}

	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT data FROM bot_state WHERE scope = $1 AND key = $2`,
		string(scope), key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("erro ao buscar estado: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("erro ao decodificar estado %s/%s: %w", scope, key, err)
	}
	return true, nil
}

func (r *StateRepository) Set(ctx context.Context, scope state.Scope, key string, value interface{}) error {
	if key == "" {
		return state.ErrEmptyKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("erro ao codificar estado %s/%s: %w", scope, key, err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO bot_state (scope, key, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope, key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, string(scope), key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("erro ao salvar estado: %w", err)
	}
	return nil
}

func (r *StateRepository) Delete(ctx context.Context, scope state.Scope, key string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM bot_state WHERE scope = $1 AND key = $2`, string(scope), key)
	if err != nil {
		return fmt.Errorf("erro ao remover estado: %w", err)
	}
	return nil
}
