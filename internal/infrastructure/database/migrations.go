package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hugohenrick/intentbot/pkg/logger"
)

// DefaultMigrationsPath é o diretório padrão das migrações
const DefaultMigrationsPath = "migrations"

func newMigrate(dbURL, path string) (*migrate.Migrate, error) {
	if path == "" {
		path = DefaultMigrationsPath
	}
	m, err := migrate.New("file://"+path, dbURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar migrate: %w", err)
	}
	return m, nil
}

// RunMigrations aplica todas as migrações pendentes
func RunMigrations(dbURL, path string, log logger.Logger) error {
	m, err := newMigrate(dbURL, path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Nenhuma migração pendente")
			return nil
		}
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}

	version, _, _ := m.Version()
	log.Info("Migrações aplicadas com sucesso", "version", version)
	return nil
}

// RollbackMigrations desfaz as últimas steps migrações
func RollbackMigrations(dbURL, path string, steps int, log logger.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("número de passos inválido: %d", steps)
	}

	m, err := newMigrate(dbURL, path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("erro ao desfazer migrações: %w", err)
	}

	log.Info("Migrações desfeitas", "steps", steps)
	return nil
}
