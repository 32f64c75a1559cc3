package sample

import (
	"errors"
	"time"

	"github.com/hugohenrick/intentbot/pkg/bot"
	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/hugohenrick/intentbot/pkg/classifier"
	"github.com/hugohenrick/intentbot/pkg/dialog"
	"github.com/hugohenrick/intentbot/pkg/intent"
	"github.com/hugohenrick/intentbot/pkg/jwt"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/oauth"
	"github.com/hugohenrick/intentbot/pkg/state"
)

// ErrMissingDependency é retornado quando Options não traz store ou provedor de login
var ErrMissingDependency = errors.New("store e provedor de login são obrigatórios")

// Options reúne as dependências do bot de exemplo
type Options struct {
	Store      state.Store
	Provider   oauth.Provider
	Settings   oauth.Settings
	Decoder    oauth.TokenDecoder
	Classifier dialog.Classifier
	Transcript chat.Repository
	Welcome    string
	Logger     logger.Logger
	Now        func() time.Time
}

// NewBot monta registro, handlers, sub-fluxo de login e motor de diálogo das intenções de exemplo
func NewBot(opts Options) (*bot.Bot, error) {
	if opts.Store == nil || opts.Provider == nil {
		return nil, ErrMissingDependency
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Decoder == nil {
		opts.Decoder = jwt.NewDecoder()
	}
	if opts.Classifier == nil {
		catalog, err := Catalog()
		if err != nil {
			return nil, err
		}
		keyword, err := classifier.NewKeyword(catalog)
		if err != nil {
			return nil, err
		}
		opts.Classifier = keyword
	}

	registry, err := intent.NewRegistry(opts.Logger, Descriptors(opts.Now)...)
	if err != nil {
		return nil, err
	}

	handlers := intent.NewHandlers(opts.Logger)
	if err := NewHandlers(opts.Store, opts.Decoder).Register(handlers); err != nil {
		return nil, err
	}

	flow, err := oauth.NewFlow(opts.Settings, opts.Provider, opts.Decoder, opts.Store, opts.Logger)
	if err != nil {
		return nil, err
	}
	flow.WithClock(opts.Now)

	engine, err := dialog.NewEngine(registry, handlers, opts.Classifier, flow, opts.Logger, dialog.WithClock(opts.Now))
	if err != nil {
		return nil, err
	}

	botOpts := []bot.Option{}
	if opts.Transcript != nil {
		botOpts = append(botOpts, bot.WithTranscript(opts.Transcript))
	}
	if opts.Welcome != "" {
		botOpts = append(botOpts, bot.WithWelcome(opts.Welcome))
	}
	return bot.New(engine, opts.Store, opts.Logger, botOpts...), nil
}

// IntentNames retorna os nomes das intenções de exemplo que um classificador pode devolver
func IntentNames() []string {
	return []string{IntentGreetings, IntentSum, IntentBookFlight, IntentPreviousSum, IntentWhoAmI}
}
