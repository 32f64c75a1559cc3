package classifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
intents:
  - intent: greetings
    phrases: [hi, hello, good morning]
  - intent: whoAmI
    phrases: ["who am i", whoami]
  - intent: sum
    phrases: [sum, add]
`

func TestKeywordClassify(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"greetings", "whoAmI", "sum"}, c.Intents())

	k, err := NewKeyword(c)
	require.NoError(t, err)

	tests := map[string]string{
		"Hi!":               "greetings",
		"good  MORNING bot": "greetings",
		"Who am I?":         "whoAmI",
		"please sum two":    "sum",
		"this":              "",
		"summary":           "",
		"":                  "",
	}
	for utterance, want := range tests {
		got, err := k.Classify(context.Background(), utterance)
		require.NoError(t, err)
		assert.Equal(t, want, got, utterance)
	}
}

func TestCatalogErrors(t *testing.T) {
	_, err := ParseCatalog([]byte("intents: []"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = ParseCatalog([]byte("intents: ["))
	assert.Error(t, err)

	_, err = NewKeyword(&Catalog{Rules: []Rule{{Intent: "x"}}})
	assert.Error(t, err)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Rules, 3)
}

type fakeClient struct {
	answer string
	err    error
	calls  int
	last   anthropic.MessageNewParams
}

func (f *fakeClient) New(_ context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	f.calls++
	f.last = params
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.Message{
		ID:   "msg-test",
		Role: "assistant",
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: f.answer},
		},
	}, nil
}

func TestAnthropicClassify(t *testing.T) {
	client := &fakeClient{answer: " BookFlight. "}
	a, err := NewAnthropicWithClient(client, AnthropicConfig{}, []string{"bookFlight", "sum"}, logger.NewNopLogger())
	require.NoError(t, err)

	got, err := a.Classify(context.Background(), "I need to fly to Paris")
	require.NoError(t, err)
	assert.Equal(t, "bookFlight", got)
	assert.Equal(t, anthropic.Model(DefaultModel), client.last.Model)
	assert.Contains(t, client.last.System[0].Text, "- bookFlight")

	_, err = a.Classify(context.Background(), "i need to fly to paris!")
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls, "normalized utterance served from cache")
}

func TestAnthropicUnknownAnswer(t *testing.T) {
	for _, answer := range []string{"none", "weather", ""} {
		a, err := NewAnthropicWithClient(&fakeClient{answer: answer}, AnthropicConfig{}, []string{"sum"}, logger.NewNopLogger())
		require.NoError(t, err)
		got, err := a.Classify(context.Background(), "what's up")
		require.NoError(t, err)
		assert.Empty(t, got, answer)
	}
}

func TestAnthropicErrors(t *testing.T) {
	_, err := NewAnthropicWithClient(&fakeClient{}, AnthropicConfig{}, nil, logger.NewNopLogger())
	assert.ErrorIs(t, err, ErrNoIntentNames)

	boom := errors.New("overloaded")
	client := &fakeClient{err: boom}
	a, err := NewAnthropicWithClient(client, AnthropicConfig{}, []string{"sum"}, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = a.Classify(context.Background(), "sum please")
	assert.ErrorIs(t, err, boom)

	got, err := a.Classify(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, client.calls)
}
