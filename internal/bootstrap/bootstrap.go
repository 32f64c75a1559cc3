// Package bootstrap monta o bot a partir da configuração: armazenamento, provedor de login,
// classificador e intenções de exemplo.
package bootstrap

import (
	"fmt"

	"github.com/hugohenrick/intentbot/internal/adapter/repository"
	"github.com/hugohenrick/intentbot/internal/sample"
	"github.com/hugohenrick/intentbot/pkg/bot"
	"github.com/hugohenrick/intentbot/pkg/classifier"
	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/hugohenrick/intentbot/pkg/dialog"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/oauth"
	"github.com/hugohenrick/intentbot/pkg/signin"
	"github.com/hugohenrick/intentbot/pkg/state"
)

// Identidade usada pelo provedor de desenvolvimento
const (
	DevUserName = "Dev User"
	DevUserUPN  = "dev@localhost"
)

// Runtime é o bot montado com suas dependências
type Runtime struct {
	Bot     *bot.Bot
	Storage *repository.Storage
	// SignIn é nil quando o provedor de desenvolvimento está em uso
	SignIn *signin.Provider
}

// Close libera o armazenamento
func (r *Runtime) Close() {
	r.Storage.Close()
}

// Build monta o runtime. cfg deve ter sido validado.
func Build(cfg *config.Config, log logger.Logger) (*Runtime, error) {
	storage, err := repository.OpenStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir armazenamento %s: %w", cfg.Store.Kind, err)
	}

	rt := &Runtime{Storage: storage}
	provider, err := rt.provider(cfg, storage.State, log)
	if err != nil {
		storage.Close()
		return nil, err
	}

	cls, err := NewClassifier(cfg.Classifier, log)
	if err != nil {
		storage.Close()
		return nil, err
	}

	settings := oauth.DefaultSettings(cfg.OAuth.ConnectionName)
	settings.Timeout = cfg.OAuth.PromptTimeout
	settings.MaxRetries = cfg.OAuth.MaxRetries

	rt.Bot, err = sample.NewBot(sample.Options{
		Store:      storage.State,
		Provider:   provider,
		Settings:   settings,
		Classifier: cls,
		Transcript: storage.History,
		Welcome:    cfg.Bot.Welcome,
		Logger:     log,
	})
	if err != nil {
		storage.Close()
		return nil, err
	}

	log.Info("Bot ready", "store", cfg.Store.Kind, "provider", cfg.OAuth.Provider, "classifier", cfg.Classifier.Kind)
	return rt, nil
}

func (r *Runtime) provider(cfg *config.Config, store state.Store, log logger.Logger) (oauth.Provider, error) {
	if cfg.OAuth.Provider == config.ProviderDev {
		log.Warn("Using development sign-in provider")
		return signin.NewDevProvider([]byte(cfg.OAuth.DevSecret), DevUserName, DevUserUPN), nil
	}

	p, err := signin.NewProvider(signin.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		AuthURL:      cfg.OAuth.AuthURL,
		TokenURL:     cfg.OAuth.TokenURL,
		RedirectURL:  cfg.OAuth.RedirectURL,
		Scopes:       cfg.OAuth.Scopes,
	}, store, log)
	if err != nil {
		return nil, err
	}
	r.SignIn = p
	return p, nil
}

// NewClassifier cria o classificador configurado em CLASSIFIER
func NewClassifier(cfg config.ClassifierConfig, log logger.Logger) (dialog.Classifier, error) {
	if cfg.Kind == config.ClassifierAnthropic {
		return classifier.NewAnthropic(classifier.AnthropicConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			Timeout:   cfg.Timeout,
			CacheSize: cfg.CacheSize,
		}, sample.IntentNames(), log)
	}

	catalog, err := sample.Catalog()
	if cfg.Catalog != "" {
		catalog, err = classifier.LoadCatalogFile(cfg.Catalog)
	}
	if err != nil {
		return nil, err
	}
	return classifier.NewKeyword(catalog)
}
