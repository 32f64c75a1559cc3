// Package sample contém as intenções de exemplo do bot: saudação, soma com memória, reserva de
// voo, consulta do resultado memorizado e identificação do usuário autenticado.
package sample

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/hugohenrick/intentbot/pkg/classifier"
	"github.com/hugohenrick/intentbot/pkg/intent"
	"github.com/hugohenrick/intentbot/pkg/oauth"
	"github.com/hugohenrick/intentbot/pkg/prompt"
	"github.com/hugohenrick/intentbot/pkg/state"
	"github.com/hugohenrick/intentbot/pkg/turn"
)

// Intenções de exemplo
const (
	IntentGreetings   = "greetings"
	IntentSum         = "sum"
	IntentBookFlight  = "bookFlight"
	IntentPreviousSum = "previousSumResult"
	IntentWhoAmI      = "whoAmI"
)

// Textos das respostas
const (
	MsgGreeting      = "Hi there. What can I do for you?"
	MsgNothingStored = "There is nothing saved in memory."
	MsgNoProfile     = "You are signed in, but your account has no profile information."
)

//go:embed intents.yaml
var catalogYAML []byte

// Catalog retorna o catálogo de frases das intenções de exemplo
func Catalog() (*classifier.Catalog, error) {
	return classifier.ParseCatalog(catalogYAML)
}

// SumIntent coleta dois números e se o resultado deve ser memorizado
type SumIntent struct {
	First          *int  `json:"first,omitempty"`
	Second         *int  `json:"second,omitempty"`
	MemorizeResult *bool `json:"memorize_result,omitempty"`
}

// BookFlightIntent coleta destino, origem e data do voo
type BookFlightIntent struct {
	To   *string    `json:"to,omitempty"`
	From *string    `json:"from,omitempty"`
	When *time.Time `json:"when,omitempty"`
}

// UserInfo é o estado de usuário das intenções de exemplo
type UserInfo struct {
	PreviousSumResult *int `json:"previous_sum_result,omitempty"`
}

// Descriptors retorna as intenções de exemplo. now limita a data do voo a hoje em diante.
func Descriptors(now func() time.Time) []intent.Descriptor {
	return []intent.Descriptor{
		{Name: IntentGreetings},
		{
			Name: IntentSum,
			New:  func() intent.Payload { return &SumIntent{} },
			Fields: prompt.For[*SumIntent]().
				Int("First", "What's the first value (between 1 and 10)?",
					func(s *SumIntent) **int { return &s.First },
					prompt.WithOrder(0),
					prompt.WithValidator(prompt.IntBetween(1, 10)),
					prompt.WithReprompt("Value should be between 1 and 10")).
				Int("Second", "What's the second value (any int32)?",
					func(s *SumIntent) **int { return &s.Second },
					prompt.WithOrder(1)).
				Bool("MemorizeResult", "Memorize result?",
					func(s *SumIntent) **bool { return &s.MemorizeResult },
					prompt.WithOrder(2)).
				MustBuild(),
		},
		{
			Name: IntentBookFlight,
			New:  func() intent.Payload { return &BookFlightIntent{} },
			Fields: prompt.For[*BookFlightIntent]().
				Text("To", "What's your destination city?",
					func(b *BookFlightIntent) **string { return &b.To },
					prompt.WithOrder(0), prompt.WithValidator(prompt.NotEmpty())).
				Text("From", "From which city?",
					func(b *BookFlightIntent) **string { return &b.From },
					prompt.WithOrder(1), prompt.WithValidator(prompt.NotEmpty())).
				Date("When", "When do you want to fly",
					func(b *BookFlightIntent) **time.Time { return &b.When },
					prompt.WithOrder(2),
					prompt.WithValidator(prompt.DateNotBefore(now)),
					prompt.WithReprompt("Please be a bit more specific about the date")).
				MustBuild(),
		},
		{Name: IntentPreviousSum},
		{Name: IntentWhoAmI, RequireAuth: true},
		{Name: intent.FallbackIntent, Fallback: true},
	}
}

// Handlers implementa as intenções de exemplo
type Handlers struct {
	userInfo *state.Accessor[UserInfo]
	decoder  oauth.TokenDecoder
}

// NewHandlers cria os handlers. O decoder lê nome e UPN do token do usuário.
func NewHandlers(store state.Store, decoder oauth.TokenDecoder) *Handlers {
	return &Handlers{
		userInfo: state.NewAccessor[UserInfo](store, state.ScopeUser, "SampleUserInfo"),
		decoder:  decoder,
	}
}

// Register registra todos os handlers de exemplo
func (h *Handlers) Register(registry *intent.Handlers) error {
	handlers := map[string]intent.Handler{
		IntentGreetings:       intent.HandlerFunc(h.greetings),
		IntentSum:             intent.Typed(h.sum),
		IntentBookFlight:      intent.Typed(h.bookFlight),
		IntentPreviousSum:     intent.HandlerFunc(h.previousSum),
		IntentWhoAmI:          intent.HandlerFunc(h.whoAmI),
		intent.FallbackIntent: intent.HandlerFunc(h.fallback),
	}
	for name, handler := range handlers {
		if err := registry.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) greetings(ctx context.Context, t turn.Turn, ic *intent.Context) error {
	return t.Send(ctx, turn.Text(MsgGreeting))
}

func (h *Handlers) sum(ctx context.Context, t turn.Turn, ic *intent.Context, s *SumIntent) error {
	x, y := *s.First, *s.Second
	result := x + y

	if s.MemorizeResult != nil && *s.MemorizeResult {
		userID := t.Activity().UserID
		info, err := h.userInfo.Get(ctx, userID)
		if err != nil {
			return err
		}
		info.PreviousSumResult = &result
		if err := h.userInfo.Set(ctx, userID, info); err != nil {
			return err
		}
	}

	return t.Send(ctx, turn.Text(fmt.Sprintf("%d + %d = %d", x, y, result)))
}

func (h *Handlers) bookFlight(ctx context.Context, t turn.Turn, ic *intent.Context, b *BookFlightIntent) error {
	msg := fmt.Sprintf("Booking a flight from %s to %s on %s.", *b.From, *b.To, b.When.Format("2006-01-02"))
	return t.Send(ctx, turn.Text(msg))
}

func (h *Handlers) previousSum(ctx context.Context, t turn.Turn, ic *intent.Context) error {
	info, err := h.userInfo.Get(ctx, t.Activity().UserID)
	if err != nil {
		return err
	}
	if info.PreviousSumResult == nil {
		return t.Send(ctx, turn.Text(MsgNothingStored))
	}
	return t.Send(ctx, turn.Text(fmt.Sprintf("The previous result is %d", *info.PreviousSumResult)))
}

func (h *Handlers) whoAmI(ctx context.Context, t turn.Turn, ic *intent.Context) error {
	name, upn, err := h.decoder.Identity(ic.Token)
	if err != nil {
		return fmt.Errorf("erro ao ler identidade do token: %w", err)
	}
	if name == "" && upn == "" {
		return t.Send(ctx, turn.Text(MsgNoProfile))
	}
	return t.Send(ctx, turn.Text(fmt.Sprintf("You are %s (%s).", name, upn)))
}

func (h *Handlers) fallback(ctx context.Context, t turn.Turn, ic *intent.Context) error {
	return t.Send(ctx, turn.Text("Default fallback handling query: "+ic.Query))
}
