package main

import (
	"flag"
	"log"
	"os"

	"github.com/hugohenrick/intentbot/internal/infrastructure/database"
	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	path := flag.String("path", database.DefaultMigrationsPath, "diretório com as migrações")
	down := flag.Int("down", 0, "número de migrações a desfazer")
	flag.Parse()

	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: Arquivo .env não encontrado: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}
	appLogger := logger.NewLoggerWithLevel(logger.ParseLevel(cfg.LogLevel), os.Stdout, os.Stderr)
	dbURL := cfg.Database.ConnectionString()

	if *down > 0 {
		if err := database.RollbackMigrations(dbURL, *path, *down, appLogger); err != nil {
			log.Fatalf("Erro ao desfazer migrações: %v", err)
		}
		log.Println("Migrações desfeitas com sucesso!")
		return
	}

	if err := database.RunMigrations(dbURL, *path, appLogger); err != nil {
		log.Fatalf("Erro ao executar migrações: %v", err)
	}
	log.Println("Migrações executadas com sucesso!")
}
