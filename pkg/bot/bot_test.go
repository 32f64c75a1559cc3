package bot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/hugohenrick/intentbot/pkg/dialog"
	"github.com/hugohenrick/intentbot/pkg/intent"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/prompt"
	"github.com/hugohenrick/intentbot/pkg/state"
	"github.com/hugohenrick/intentbot/pkg/turn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	Text *string `json:"text,omitempty"`
}

func newBot(t *testing.T, store state.Store, opts ...Option) *Bot {
	t.Helper()
	log := logger.NewNopLogger()

	reg, err := intent.NewRegistry(log,
		intent.Descriptor{
			Name:   "echo",
			New:    func() intent.Payload { return &echo{} },
			Fields: prompt.For[*echo]().Text("Text", "Say something", func(e *echo) **string { return &e.Text }).MustBuild(),
		},
		intent.Descriptor{Name: "explode"},
		intent.Descriptor{Name: intent.FallbackIntent, Fallback: true},
	)
	require.NoError(t, err)

	handlers := intent.NewHandlers(log)
	require.NoError(t, handlers.Register("echo", intent.Typed(func(ctx context.Context, tt turn.Turn, ic *intent.Context, p *echo) error {
		return tt.Send(ctx, turn.Text("echo: "+*p.Text))
	})))
	require.NoError(t, handlers.Register("explode", intent.HandlerFunc(func(ctx context.Context, tt turn.Turn, ic *intent.Context) error {
		if err := tt.Send(ctx, turn.Text("about to fail")); err != nil {
			return err
		}
		return errors.New("boom")
	})))
	require.NoError(t, handlers.Register(intent.FallbackIntent, intent.HandlerFunc(func(ctx context.Context, tt turn.Turn, ic *intent.Context) error {
		return tt.Send(ctx, turn.Text("fallback"))
	})))

	classifier := dialog.ClassifierFunc(func(_ context.Context, u string) (string, error) { return u, nil })
	engine, err := dialog.NewEngine(reg, handlers, classifier, nil, log)
	require.NoError(t, err)

	return New(engine, store, log, opts...)
}

func send(t *testing.T, b *Bot, activity turn.Activity) []string {
	t.Helper()
	if activity.ConversationID == "" {
		activity.ConversationID = "c1"
	}
	if activity.UserID == "" {
		activity.UserID = "u1"
	}
	buf := turn.NewBuffer(activity)
	require.NoError(t, b.OnTurn(context.Background(), buf))
	return buf.Texts()
}

func msg(text string) turn.Activity {
	return turn.Activity{Type: turn.TypeMessage, Text: text}
}

func TestWelcomeOnConversationUpdate(t *testing.T) {
	b := newBot(t, state.NewMemoryStore(), WithWelcome("hello there"))
	assert.Equal(t, []string{"hello there"}, send(t, b, turn.Activity{Type: turn.TypeConversationUpdate}))
}

func TestStatePersistsBetweenTurns(t *testing.T) {
	store := state.NewMemoryStore()
	b := newBot(t, store)

	assert.Equal(t, []string{"Say something"}, send(t, b, msg("echo")))
	assert.Equal(t, 1, store.Len(state.ScopeConversation))

	// outro Bot sobre o mesmo store retoma a conversa
	other := newBot(t, store)
	assert.Equal(t, []string{"echo: ping"}, send(t, other, msg("ping")))
}

func TestConversationsAreIsolated(t *testing.T) {
	b := newBot(t, state.NewMemoryStore())
	send(t, b, turn.Activity{Type: turn.TypeMessage, Text: "echo", ConversationID: "a"})
	assert.Equal(t, []string{"fallback"}, send(t, b, turn.Activity{Type: turn.TypeMessage, Text: "x", ConversationID: "b"}))
	assert.Equal(t, []string{"echo: y"}, send(t, b, turn.Activity{Type: turn.TypeMessage, Text: "y", ConversationID: "a"}))
}

func TestHandlerErrorIsReportedToUser(t *testing.T) {
	b := newBot(t, state.NewMemoryStore())
	assert.Equal(t, []string{"about to fail", MsgTurnError}, send(t, b, msg("explode")))
	assert.Equal(t, []string{"fallback"}, send(t, b, msg("next")))
}

func TestCorruptedStateIsDeleted(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	corrupted := dialog.State{
		Phase:  dialog.PhaseCollecting,
		Intent: &intent.Snapshot{Name: "echo", Payload: json.RawMessage(`{"text": 42}`)},
	}
	require.NoError(t, store.Set(ctx, state.ScopeConversation, "c1/DialogState", corrupted))

	b := newBot(t, store)
	assert.Equal(t, []string{MsgTurnError}, send(t, b, msg("hi")))
	assert.Equal(t, 0, store.Len(state.ScopeConversation))

	assert.Equal(t, []string{"fallback"}, send(t, b, msg("hi")))
}

func TestMissingConversation(t *testing.T) {
	b := newBot(t, state.NewMemoryStore())
	err := b.OnTurn(context.Background(), turn.NewBuffer(turn.Activity{Type: turn.TypeMessage}))
	assert.ErrorIs(t, err, ErrMissingConversation)
}

func TestTranscript(t *testing.T) {
	repo := chat.NewMemoryRepository()
	b := newBot(t, state.NewMemoryStore(), WithTranscript(repo))
	send(t, b, msg("echo"))
	send(t, b, msg("ping"))

	count, err := repo.CountConversationMessages(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestConcurrentTurnsSameConversation(t *testing.T) {
	b := newBot(t, state.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := turn.NewBuffer(turn.Activity{Type: turn.TypeMessage, Text: "echo", ConversationID: "c1", UserID: "u1"})
			assert.NoError(t, b.OnTurn(context.Background(), buf))
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, b.locks.size())
}
