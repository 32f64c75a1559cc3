package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: Arquivo .env não encontrado: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Configuração inválida: %v", err)
	}

	appLogger := logger.NewLoggerWithLevel(logger.ParseLevel(cfg.LogLevel), os.Stdout, os.Stderr)

	// Criar aplicação
	app, err := NewApp(cfg, appLogger)
	if err != nil {
		log.Fatalf("Erro ao iniciar aplicação: %v", err)
	}
	defer app.Close()

	app.SetupRoutes(cfg.HTTP.BasePath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Iniciar o servidor
	if err := app.Start(ctx); err != nil {
		appLogger.Error("Server stopped", "error", err)
	}
}
