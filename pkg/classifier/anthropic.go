package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hugohenrick/intentbot/pkg/logger"
)

// Valores padrão do classificador LLM
const (
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultMaxTokens = 16
	DefaultTimeout   = 10 * time.Second
	DefaultCacheSize = 512
)

const noneAnswer = "none"

// ErrNoIntentNames é retornado quando nenhuma intenção foi informada ao classificador
var ErrNoIntentNames = errors.New("nenhuma intenção para classificar")

// MessageClient é a parte da API de mensagens usada pelo classificador
type MessageClient interface {
	New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type sdkClient struct {
	messages *anthropic.MessageService
}

func (c *sdkClient) New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return c.messages.New(ctx, params)
}

// AnthropicConfig configura o classificador
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	CacheSize int
}

func (c *AnthropicConfig) defaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
}

// Anthropic classifica a frase pedindo ao Claude um dos nomes de intenção conhecidos
type Anthropic struct {
	client  MessageClient
	config  AnthropicConfig
	intents map[string]string
	system  string
	cache   *lru.Cache[string, string]
	logger  logger.Logger
}

// NewAnthropic cria o classificador usando o SDK oficial
func NewAnthropic(config AnthropicConfig, intents []string, log logger.Logger) (*Anthropic, error) {
	opts := []option.RequestOption{}
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}
	client := anthropic.NewClient(opts...)
	return NewAnthropicWithClient(&sdkClient{messages: &client.Messages}, config, intents, log)
}

// NewAnthropicWithClient cria o classificador com um cliente customizado
func NewAnthropicWithClient(client MessageClient, config AnthropicConfig, intents []string, log logger.Logger) (*Anthropic, error) {
	if len(intents) == 0 {
		return nil, ErrNoIntentNames
	}
	config.defaults()

	cache, err := lru.New[string, string](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar cache do classificador: %w", err)
	}

	byKey := make(map[string]string, len(intents))
	for _, name := range intents {
		byKey[strings.ToLower(name)] = name
	}

	return &Anthropic{
		client:  client,
		config:  config,
		intents: byKey,
		system:  systemPrompt(intents),
		cache:   cache,
		logger:  log,
	}, nil
}

func systemPrompt(intents []string) string {
	var b strings.Builder
	b.WriteString("You classify a chat message into exactly one intent.\n")
	b.WriteString("Known intents:\n")
	for _, name := range intents {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("Answer with the intent name only. If no intent fits, answer ")
	b.WriteString(noneAnswer)
	b.WriteString(".")
	return b.String()
}

// Classify implementa dialog.Classifier. Respostas fora da lista resultam em vazio.
func (a *Anthropic) Classify(ctx context.Context, utterance string) (string, error) {
	key := normalize(utterance)
	if key == "" {
		return "", nil
	}
	if name, ok := a.cache.Get(key); ok {
		return name, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	resp, err := a.client.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.config.Model),
		MaxTokens: int64(a.config.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: a.system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(utterance)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("classification request failed: %w", err)
	}

	name := a.match(textContent(resp))
	a.cache.Add(key, name)
	a.logger.Debug("Utterance classified", "intent", name, "model", a.config.Model)
	return name, nil
}

func (a *Anthropic) match(answer string) string {
	answer = strings.ToLower(strings.Trim(strings.TrimSpace(answer), "\"'`.!"))
	if answer == "" || answer == noneAnswer {
		return ""
	}
	return a.intents[answer]
}

func textContent(resp *anthropic.Message) string {
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}
