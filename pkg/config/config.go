// Package config lê a configuração do bot a partir de variáveis de ambiente (carregadas de um
// arquivo .env pelo godotenv nos binários).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provedores de login
const (
	ProviderOAuth2 = "oauth2"
	ProviderDev    = "dev"
)

// Classificadores
const (
	ClassifierKeyword   = "keyword"
	ClassifierAnthropic = "anthropic"
)

// Armazenamentos de estado
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Erros de configuração
var (
	ErrMissingAppSecret    = errors.New("BOT_APP_SECRET é obrigatório")
	ErrMissingConnection   = errors.New("OAUTH_CONNECTION_NAME é obrigatório")
	ErrMissingOAuthClient  = errors.New("OAUTH_CLIENT_ID, OAUTH_AUTH_URL e OAUTH_TOKEN_URL são obrigatórios para o provedor oauth2")
	ErrMissingAnthropicKey = errors.New("ANTHROPIC_API_KEY é obrigatório para o classificador anthropic")
	ErrInvalidOption       = errors.New("valor de configuração inválido")
)

// HTTPConfig configura o servidor HTTP
type HTTPConfig struct {
	Port           string
	BasePath       string
	Mode           string
	AllowedOrigins []string
}

// BotConfig configura o host do bot
type BotConfig struct {
	AppSecret       string
	Welcome         string
	ChannelTokenTTL time.Duration
}

// OAuthConfig configura o sub-fluxo de login
type OAuthConfig struct {
	ConnectionName string
	Provider       string
	PromptTimeout  time.Duration
	MaxRetries     int
	ClientID       string
	ClientSecret   string
	AuthURL        string
	TokenURL       string
	RedirectURL    string
	Scopes         []string
	DevSecret      string
}

// ClassifierConfig configura o classificador de intenções
type ClassifierConfig struct {
	Kind      string
	Catalog   string
	APIKey    string
	Model     string
	CacheSize int
	Timeout   time.Duration
}

// StoreConfig configura o armazenamento de estado
type StoreConfig struct {
	Kind       string
	SQLitePath string
}

// DatabaseConfig configura o PostgreSQL
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ConnectionString retorna DATABASE_URL ou a string montada a partir das variáveis DB_*
func (d DatabaseConfig) ConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Config é a configuração completa
type Config struct {
	HTTP       HTTPConfig
	Bot        BotConfig
	OAuth      OAuthConfig
	Classifier ClassifierConfig
	Store      StoreConfig
	Database   DatabaseConfig
	LogLevel   string
}

// Load lê a configuração do ambiente. Valores numéricos ou de duração inválidos são erro.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:           getEnv("PORT", "8080"),
			BasePath:       getEnv("API_BASE_PATH", "/api/v1"),
			Mode:           getEnv("GIN_MODE", "debug"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Bot: BotConfig{
			AppSecret:       os.Getenv("BOT_APP_SECRET"),
			Welcome:         os.Getenv("BOT_WELCOME_MESSAGE"),
			ChannelTokenTTL: getDuration("BOT_CHANNEL_TOKEN_TTL", 24*time.Hour, &errs),
		},
		OAuth: OAuthConfig{
			ConnectionName: os.Getenv("OAUTH_CONNECTION_NAME"),
			Provider:       strings.ToLower(getEnv("OAUTH_PROVIDER", ProviderOAuth2)),
			PromptTimeout:  getDuration("OAUTH_PROMPT_TIMEOUT", 30*time.Second, &errs),
			MaxRetries:     getInt("OAUTH_MAX_RETRIES", 3, &errs),
			ClientID:       os.Getenv("OAUTH_CLIENT_ID"),
			ClientSecret:   os.Getenv("OAUTH_CLIENT_SECRET"),
			AuthURL:        os.Getenv("OAUTH_AUTH_URL"),
			TokenURL:       os.Getenv("OAUTH_TOKEN_URL"),
			RedirectURL:    os.Getenv("OAUTH_REDIRECT_URL"),
			Scopes:         splitList(getEnv("OAUTH_SCOPES", "openid,profile")),
			DevSecret:      getEnv("OAUTH_DEV_SECRET", "dev-secret"),
		},
		Classifier: ClassifierConfig{
			Kind:      strings.ToLower(getEnv("CLASSIFIER", ClassifierKeyword)),
			Catalog:   os.Getenv("INTENT_CATALOG"),
			APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
			Model:     os.Getenv("ANTHROPIC_MODEL"),
			CacheSize: getInt("CLASSIFIER_CACHE_SIZE", 512, &errs),
			Timeout:   getDuration("CLASSIFIER_TIMEOUT", 10*time.Second, &errs),
		},
		Store: StoreConfig{
			Kind:       strings.ToLower(getEnv("STATE_STORE", StorePostgres)),
			SQLitePath: getEnv("SQLITE_PATH", "intentbot.db"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "intentbot"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate verifica as configurações comuns a todos os binários
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OAuth.ConnectionName) == "" {
		return ErrMissingConnection
	}

	switch c.OAuth.Provider {
	case ProviderOAuth2:
		if c.OAuth.ClientID == "" || c.OAuth.AuthURL == "" || c.OAuth.TokenURL == "" {
			return ErrMissingOAuthClient
		}
	case ProviderDev:
	default:
		return fmt.Errorf("%w: OAUTH_PROVIDER=%s", ErrInvalidOption, c.OAuth.Provider)
	}

	switch c.Classifier.Kind {
	case ClassifierKeyword:
	case ClassifierAnthropic:
		if c.Classifier.APIKey == "" {
			return ErrMissingAnthropicKey
		}
	default:
		return fmt.Errorf("%w: CLASSIFIER=%s", ErrInvalidOption, c.Classifier.Kind)
	}

	switch c.Store.Kind {
	case StorePostgres, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("%w: STATE_STORE=%s", ErrInvalidOption, c.Store.Kind)
	}
	return nil
}

// ValidateServer verifica também o que o servidor HTTP exige
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Bot.AppSecret == "" {
		return ErrMissingAppSecret
	}
	return nil
}

// getEnv retorna o valor de uma variável de ambiente ou um valor padrão
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]error) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrInvalidOption, key, raw))
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q", ErrInvalidOption, key, raw))
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
