package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/intentbot/internal/adapter/api/controller"
	"github.com/hugohenrick/intentbot/internal/adapter/api/route"
	"github.com/hugohenrick/intentbot/internal/adapter/api/stream"
	"github.com/hugohenrick/intentbot/internal/bootstrap"
	"github.com/hugohenrick/intentbot/pkg/auth"
	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/hugohenrick/intentbot/pkg/logger"

	_ "github.com/hugohenrick/intentbot/docs"
)

// Version é a versão reportada pelo health check
const Version = "1.0.0"

// App representa a aplicação e suas dependências
type App struct {
	config          *config.Config
	logger          logger.Logger
	router          *gin.Engine
	runtime         *bootstrap.Runtime
	jwtService      *auth.JWTService
	botController   *controller.BotController
	oauthController *controller.OAuthController
}

// NewApp cria uma nova instância do aplicativo
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	runtime, err := bootstrap.Build(cfg, log)
	if err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Bot.AppSecret, cfg.Bot.ChannelTokenTTL)
	if err != nil {
		runtime.Close()
		return nil, err
	}

	// Sessões websocket recebem as respostas e os tokens do callback OAuth
	hub := stream.NewHub(runtime.Bot, log)

	app := &App{
		config:        cfg,
		logger:        log,
		router:        route.NewRouter(cfg.HTTP.Mode, cfg.HTTP.AllowedOrigins),
		runtime:       runtime,
		jwtService:    jwtService,
		botController: controller.NewBotController(runtime.Bot, runtime.Storage.History, hub, log),
	}
	if runtime.SignIn != nil {
		app.oauthController = controller.NewOAuthController(runtime.SignIn, hub, log)
	}
	return app, nil
}

// SetupRoutes configura as rotas da aplicação
func (a *App) SetupRoutes(basePath string) {
	api := a.router.Group(basePath)

	route.ConfigureHealthRoutes(api, Version)
	route.ConfigureBotRoutes(api, a.botController, a.jwtService)

	// Sem provedor OAuth2 não há callback
	if a.oauthController != nil {
		route.ConfigureOAuthRoutes(api, a.oauthController)
	}
}

// GetRouter retorna o router da aplicação
func (a *App) GetRouter() *gin.Engine {
	return a.router
}

// Start sobe o servidor HTTP e bloqueia até ctx ser cancelado
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.config.HTTP.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server listening", "port", a.config.HTTP.Port, "base_path", a.config.HTTP.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.runtime != nil {
		a.runtime.Close()
	}
}
