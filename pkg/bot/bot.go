// Package bot hospeda o motor de diálogo: carrega e salva o estado da conversa a cada turno,
// serializa turnos de uma mesma conversa e trata erros na fronteira do turno.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/hugohenrick/intentbot/pkg/dialog"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/state"
	"github.com/hugohenrick/intentbot/pkg/turn"
)

// Mensagens padrão
const (
	DefaultWelcome = "Welcome to the intent bot! Try saying hi, sum, flight, memory or who am i."
	MsgTurnError   = "Sorry, something went wrong. Please try again."
)

// ErrMissingConversation é retornado quando a atividade não identifica a conversa
var ErrMissingConversation = errors.New("atividade sem conversation_id")

// Bot processa turnos de conversa
type Bot struct {
	engine      *dialog.Engine
	dialogState *state.Accessor[dialog.State]
	transcript  chat.Repository
	logger      logger.Logger
	welcome     string
	locks       *keyedMutex
}

// Option configura o Bot
type Option func(*Bot)

// WithTranscript grava as mensagens de entrada e saída no repositório de histórico
func WithTranscript(repo chat.Repository) Option {
	return func(b *Bot) { b.transcript = repo }
}

// WithWelcome substitui a mensagem de boas-vindas
func WithWelcome(text string) Option {
	return func(b *Bot) { b.welcome = text }
}

// New cria o Bot
func New(engine *dialog.Engine, store state.Store, log logger.Logger, opts ...Option) *Bot {
	b := &Bot{
		engine:      engine,
		dialogState: state.NewAccessor[dialog.State](store, state.ScopeConversation, "DialogState"),
		logger:      log,
		welcome:     DefaultWelcome,
		locks:       newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnTurn processa um turno. As mensagens de saída só são entregues ao transporte depois que o
// estado da conversa foi salvo. Erros do processamento são tratados aqui; o erro retornado
// indica apenas falha de entrega.
func (b *Bot) OnTurn(ctx context.Context, t turn.Turn) error {
	a := t.Activity()
	if a.ConversationID == "" {
		return ErrMissingConversation
	}

	unlock := b.locks.Lock(a.ConversationID)
	defer unlock()

	buf := turn.NewBuffer(a)
	if err := b.process(ctx, buf); err != nil {
		b.onTurnError(ctx, buf, err)
	}

	for _, msg := range buf.Sent() {
		if err := t.Send(ctx, msg); err != nil {
			return fmt.Errorf("erro ao entregar mensagem: %w", err)
		}
		if msg.Text != "" {
			b.record(ctx, a, chat.RoleBot, msg.Text)
		}
	}
	return nil
}

func (b *Bot) process(ctx context.Context, t *turn.Buffer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic no turno: %v", r)
		}
	}()

	a := t.Activity()
	switch {
	case a.Type == turn.TypeConversationUpdate:
		return t.Send(ctx, turn.Text(b.welcome))
	case a.IsMessage(), a.IsTokenResponse():
	default:
		b.logger.Debug("Ignoring activity", "type", a.Type, "name", a.Name)
		return nil
	}

	if a.IsMessage() {
		b.record(ctx, a, chat.RoleUser, a.Text)
	}

	st, err := b.dialogState.Get(ctx, a.ConversationID)
	if err != nil {
		return err
	}
	if err := b.engine.Run(ctx, t, st); err != nil {
		return err
	}
	return b.dialogState.Set(ctx, a.ConversationID, st)
}

// onTurnError registra o erro, avisa o usuário e apaga o estado da conversa para evitar que o
// mesmo erro se repita no próximo turno
func (b *Bot) onTurnError(ctx context.Context, t *turn.Buffer, err error) {
	a := t.Activity()
	b.logger.Error("Unhandled error in turn", "conversation_id", a.ConversationID, "user_id", a.UserID, "error", err)

	if delErr := b.dialogState.Delete(ctx, a.ConversationID); delErr != nil {
		b.logger.Error("Failed to delete conversation state", "conversation_id", a.ConversationID, "error", delErr)
	}
	if sendErr := t.Send(ctx, turn.Text(MsgTurnError)); sendErr != nil {
		b.logger.Error("Failed to send error message", "conversation_id", a.ConversationID, "error", sendErr)
	}
}

func (b *Bot) record(ctx context.Context, a turn.Activity, role, content string) {
	if b.transcript == nil || content == "" {
		return
	}
	msg := &chat.Message{
		ID:             uuid.New().String(),
		ConversationID: a.ConversationID,
		UserID:         a.UserID,
		Role:           role,
		Content:        content,
		Timestamp:      time.Now().UTC(),
	}
	if err := b.transcript.SaveMessage(ctx, msg); err != nil {
		b.logger.Warn("Failed to save transcript message", "conversation_id", a.ConversationID, "error", err)
	}
}
