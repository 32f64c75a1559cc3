package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hugohenrick/intentbot/pkg/intent"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/oauth"
	"github.com/hugohenrick/intentbot/pkg/prompt"
	"github.com/hugohenrick/intentbot/pkg/turn"
)

// Mensagens enviadas pelo motor
const (
	MsgCancelling = "Cancelling"
	MsgThankYou   = "Thank you."
)

// DefaultInterruptions é o vocabulário de cancelamento
var DefaultInterruptions = []string{"bye", "cancel", "quit", "exit", "start over", "restart"}

var (
	// ErrAuthNotConfigured é retornado quando uma intenção exige login e não há sub-fluxo OAuth
	ErrAuthNotConfigured = errors.New("intenção exige autenticação mas o OAuth não foi configurado")
	// ErrMissingToken protege o despacho de um contexto autenticado sem token
	ErrMissingToken = errors.New("contexto exige autenticação mas não tem token")
	// ErrUnknownDialog é retornado quando o contexto aponta para um sub-diálogo não registrado
	ErrUnknownDialog = errors.New("sub-diálogo não registrado")
)

// Classifier classifica a frase do usuário em um nome de intenção. Vazio significa desconhecido.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (string, error)
}

// ClassifierFunc adapta uma função a Classifier
type ClassifierFunc func(ctx context.Context, utterance string) (string, error)

// Classify implementa Classifier
func (f ClassifierFunc) Classify(ctx context.Context, utterance string) (string, error) {
	return f(ctx, utterance)
}

// Engine é a máquina de estados principal. Não guarda estado de conversa: tudo que precisa ser
// retomado fica em State.
type Engine struct {
	registry      *intent.Registry
	handlers      *intent.Handlers
	classifier    Classifier
	auth          *oauth.Flow
	logger        logger.Logger
	interruptions map[string]bool
	orchestrators map[string]*prompt.Orchestrator
	now           func() time.Time
}

// Option configura o Engine
type Option func(*Engine)

// WithInterruptions substitui o vocabulário de cancelamento
func WithInterruptions(words ...string) Option {
	return func(e *Engine) {
		e.interruptions = make(map[string]bool, len(words))
		for _, w := range words {
			e.interruptions[strings.ToLower(strings.TrimSpace(w))] = true
		}
	}
}

// WithClock define o relógio usado pelos orquestradores no reconhecimento de datas relativas
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine cria o motor. auth pode ser nil quando nenhuma intenção exige login.
func NewEngine(registry *intent.Registry, handlers *intent.Handlers, classifier Classifier, auth *oauth.Flow, log logger.Logger, opts ...Option) (*Engine, error) {
	e := &Engine{
		registry:      registry,
		handlers:      handlers,
		classifier:    classifier,
		auth:          auth,
		logger:        log,
		orchestrators: make(map[string]*prompt.Orchestrator),
		now:           time.Now,
	}
	WithInterruptions(DefaultInterruptions...)(e)
	for _, opt := range opts {
		opt(e)
	}

	for _, name := range registry.Names() {
		d := registry.Resolve(name)
		if d.RequireAuth && auth == nil {
			return nil, fmt.Errorf("%w: %s", ErrAuthNotConfigured, d.Name)
		}
		if id := d.DialogID(); id != "" {
			if _, ok := registry.Lookup(id); ok {
				e.orchestrators[id] = prompt.NewOrchestrator(d.Fields).WithClock(e.now)
			}
		}
	}

	if missing := handlers.Missing(registry); len(missing) > 0 {
		log.Warn("Intents without handler", "intents", strings.Join(missing, ","))
	}
	return e, nil
}

// IsInterruption indica se o texto pertence ao vocabulário de cancelamento
func (e *Engine) IsInterruption(text string) bool {
	return e.interruptions[strings.ToLower(strings.TrimSpace(text))]
}

// Run processa um turno, avançando st. Erros de handler são propagados; falhas de login e
// recusas terminam a sequência sem erro.
func (e *Engine) Run(ctx context.Context, t turn.Turn, st *State) error {
	a := t.Activity()

	if st.Active() {
		if a.IsMessage() && e.IsInterruption(a.Text) {
			e.logger.Info("Conversation interrupted", "conversation_id", a.ConversationID, "phase", st.Phase)
			st.Reset()
			return t.Send(ctx, turn.Text(MsgCancelling))
		}

		ic, err := e.registry.Restore(st.Intent)
		if err != nil {
			st.Reset()
			return err
		}

		switch st.Phase {
		case PhaseAuthenticating:
			return e.continueAuth(ctx, t, st, ic)
		case PhaseCollecting:
			return e.continueCollect(ctx, t, st, ic)
		default:
			phase := st.Phase
			st.Reset()
			return fmt.Errorf("fase de diálogo desconhecida: %s", phase)
		}
	}

	if !a.IsMessage() {
		e.logger.Debug("Ignoring activity outside a sequence", "type", a.Type, "name", a.Name)
		return nil
	}

	name, err := e.classifier.Classify(ctx, a.Text)
	if err != nil {
		e.logger.Warn("Classifier failed, using fallback", "error", err)
		name = ""
	}

	ic := e.registry.CreateContext(name, a.Text)
	e.logger.Info("Intent resolved", "conversation_id", a.ConversationID, "classified", name, "intent", ic.Name)
	return e.authenticate(ctx, t, st, ic)
}

func (e *Engine) authenticate(ctx context.Context, t turn.Turn, st *State, ic *intent.Context) error {
	if !ic.RequireAuth {
		return e.collect(ctx, t, st, ic)
	}
	if e.auth == nil {
		st.Reset()
		return fmt.Errorf("%w: %s", ErrAuthNotConfigured, ic.Name)
	}

	res, err := e.auth.Begin(ctx, t, &st.Auth)
	return e.afterAuth(ctx, t, st, ic, res, err)
}

func (e *Engine) continueAuth(ctx context.Context, t turn.Turn, st *State, ic *intent.Context) error {
	if e.auth == nil {
		st.Reset()
		return fmt.Errorf("%w: %s", ErrAuthNotConfigured, ic.Name)
	}
	res, err := e.auth.Continue(ctx, t, &st.Auth)
	return e.afterAuth(ctx, t, st, ic, res, err)
}

func (e *Engine) afterAuth(ctx context.Context, t turn.Turn, st *State, ic *intent.Context, res oauth.Result, err error) error {
	if err != nil {
		st.Reset()
		return err
	}

	switch res.Status {
	case oauth.StatusPending:
		st.Phase = PhaseAuthenticating
		return e.suspend(st, ic)
	case oauth.StatusFailed:
		e.logger.Info("Authentication did not complete", "intent", ic.Name)
		st.Reset()
		return nil
	}

	ic.Token = res.Token
	return e.collect(ctx, t, st, ic)
}

func (e *Engine) collect(ctx context.Context, t turn.Turn, st *State, ic *intent.Context) error {
	if !ic.HasDialog() {
		return e.dispatch(ctx, t, st, ic)
	}

	o, ok := e.orchestrators[ic.DialogID]
	if !ok {
		st.Reset()
		return fmt.Errorf("%w: %s", ErrUnknownDialog, ic.DialogID)
	}

	res, err := o.Begin(ic.Payload, ic.ConfirmationPrompt(), &st.Collect)
	return e.afterCollect(ctx, t, st, ic, res, err)
}

func (e *Engine) continueCollect(ctx context.Context, t turn.Turn, st *State, ic *intent.Context) error {
	if !t.Activity().IsMessage() {
		return nil
	}

	o, ok := e.orchestrators[ic.DialogID]
	if !ok {
		st.Reset()
		return fmt.Errorf("%w: %s", ErrUnknownDialog, ic.DialogID)
	}

	res, err := o.Continue(ic.Payload, ic.ConfirmationPrompt(), &st.Collect, t.Activity().Text)
	return e.afterCollect(ctx, t, st, ic, res, err)
}

func (e *Engine) afterCollect(ctx context.Context, t turn.Turn, st *State, ic *intent.Context, res prompt.Result, err error) error {
	if err != nil {
		st.Reset()
		return err
	}

	switch res.Status {
	case prompt.StatusWaiting:
		st.Phase = PhaseCollecting
		if err := e.suspend(st, ic); err != nil {
			return err
		}
		return t.Send(ctx, turn.Text(res.Prompt))
	case prompt.StatusDeclined:
		e.logger.Info("Collection declined", "intent", ic.Name)
		st.Reset()
		return t.Send(ctx, turn.Text(MsgThankYou))
	}

	return e.dispatch(ctx, t, st, ic)
}

func (e *Engine) suspend(st *State, ic *intent.Context) error {
	snap, err := ic.Snapshot()
	if err != nil {
		st.Reset()
		return err
	}
	st.Intent = snap
	return nil
}

func (e *Engine) dispatch(ctx context.Context, t turn.Turn, st *State, ic *intent.Context) error {
	st.Reset()
	if ic.RequireAuth && ic.Token == "" {
		return fmt.Errorf("%w: %s", ErrMissingToken, ic.Name)
	}
	return e.handlers.Dispatch(ctx, t, ic)
}
