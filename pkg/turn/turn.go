// Package turn define o contrato de transporte de um turno de conversa: a atividade recebida
// do usuário e o envio de mensagens de saída.
package turn

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Tipos de atividade aceitos
const (
	TypeMessage            = "message"
	TypeEvent              = "event"
	TypeConversationUpdate = "conversationUpdate"
)

// EventTokenResponse é o nome do evento que entrega um token OAuth ao bot
const EventTokenResponse = "tokens/response"

// ErrEmptyMessage é retornado ao enviar uma mensagem sem texto nem anexos
var ErrEmptyMessage = errors.New("mensagem vazia")

// Activity representa uma atividade recebida pelo bot
type Activity struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Name           string    `json:"name,omitempty"`
	Text           string    `json:"text,omitempty"`
	Value          string    `json:"value,omitempty"`
	ChannelID      string    `json:"channel_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name,omitempty"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// IsMessage indica se a atividade é uma mensagem de texto
func (a Activity) IsMessage() bool {
	return a.Type == TypeMessage
}

// IsTokenResponse indica se a atividade carrega um token vindo do fluxo de login
func (a Activity) IsTokenResponse() bool {
	return a.Type == TypeEvent && a.Name == EventTokenResponse
}

// NormalizedText retorna o texto em minúsculas e sem espaços nas pontas
func (a Activity) NormalizedText() string {
	return strings.ToLower(strings.TrimSpace(a.Text))
}

// SignInCard é o anexo enviado quando o usuário precisa fazer login
type SignInCard struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Message é uma mensagem de saída
type Message struct {
	Text       string      `json:"text,omitempty"`
	SignInCard *SignInCard `json:"sign_in_card,omitempty"`
}

// Text cria uma mensagem de texto simples
func Text(text string) Message {
	return Message{Text: text}
}

// Turn é o contexto de um único turno
type Turn interface {
	Activity() Activity
	Send(ctx context.Context, msg Message) error
}

// Buffer é um Turn que acumula as mensagens enviadas, na ordem em que foram enviadas
type Buffer struct {
	activity Activity

	mu   sync.Mutex
	sent []Message
}

// NewBuffer cria um turno bufferizado para a atividade informada
func NewBuffer(activity Activity) *Buffer {
	return &Buffer{activity: activity}
}

// Activity retorna a atividade do turno
func (b *Buffer) Activity() Activity {
	return b.activity
}

// Send acumula a mensagem
func (b *Buffer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.Text == "" && msg.SignInCard == nil {
		return ErrEmptyMessage
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, msg)
	return nil
}

// Sent retorna uma cópia das mensagens enviadas
func (b *Buffer) Sent() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Message, len(b.sent))
	copy(out, b.sent)
	return out
}

// Texts retorna apenas os textos das mensagens enviadas
func (b *Buffer) Texts() []string {
	sent := b.Sent()
	texts := make([]string, 0, len(sent))
	for _, m := range sent {
		if m.Text != "" {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
