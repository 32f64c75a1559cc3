package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/turn"
)

// Erros do registro de handlers
var (
	ErrNoHandler        = errors.New("no handler for intentContext")
	ErrDuplicateHandler = errors.New("handler já registrado para a intenção")
	ErrNilHandler       = errors.New("handler nulo")
	ErrRegistryFrozen   = errors.New("registro de handlers já está em uso")
	ErrPayloadType      = errors.New("payload incompatível com o handler")
)

// Handler processa um contexto completamente coletado e autenticado
type Handler interface {
	Handle(ctx context.Context, t turn.Turn, ic *Context) error
}

// HandlerFunc adapta uma função a Handler
type HandlerFunc func(ctx context.Context, t turn.Turn, ic *Context) error

// Handle implementa Handler
func (f HandlerFunc) Handle(ctx context.Context, t turn.Turn, ic *Context) error {
	return f(ctx, t, ic)
}

// Typed cria um Handler que recebe o payload já convertido para T
func Typed[T any](fn func(ctx context.Context, t turn.Turn, ic *Context, payload T) error) Handler {
	return HandlerFunc(func(ctx context.Context, t turn.Turn, ic *Context) error {
		payload, ok := ic.Payload.(T)
		if !ok {
			return fmt.Errorf("%w: %s espera %T, recebeu %T", ErrPayloadType, ic.Name, *new(T), ic.Payload)
		}
		return fn(ctx, t, ic, payload)
	})
}

// Handlers mapeia o nome da intenção para o seu handler. O registro deve terminar antes do
// primeiro despacho; depois disso o mapa é apenas lido.
type Handlers struct {
	logger logger.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
	frozen   atomic.Bool
}

// NewHandlers cria um registro de handlers vazio
func NewHandlers(log logger.Logger) *Handlers {
	return &Handlers{
		logger:   log,
		handlers: make(map[string]Handler),
	}
}

// Register associa o handler à intenção
func (h *Handlers) Register(intentName string, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, intentName)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.frozen.Load() {
		return fmt.Errorf("%w: %s", ErrRegistryFrozen, intentName)
	}
	key := strings.ToLower(intentName)
	if _, exists := h.handlers[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, intentName)
	}
	h.handlers[key] = handler

	h.logger.Info("Handler de intenção registrado", "intent", intentName, "handler", fmt.Sprintf("%T", handler))
	return nil
}

// Missing retorna as intenções do registro que ainda não têm handler
func (h *Handlers) Missing(r *Registry) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var missing []string
	for _, name := range r.Names() {
		if _, ok := h.handlers[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Dispatch entrega o contexto ao handler da intenção
func (h *Handlers) Dispatch(ctx context.Context, t turn.Turn, ic *Context) error {
	h.frozen.Store(true)

	h.mu.RLock()
	handler, ok := h.handlers[strings.ToLower(ic.Name)]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w %s", ErrNoHandler, ic.Name)
	}

	h.logger.Debug("Dispatching intent", "intent", ic.Name, "fallback", ic.Fallback)
	return handler.Handle(ctx, t, ic)
}
