// Package oauth implementa o sub-fluxo de autenticação: consulta o token em cache, envia o cartão
// de login, valida a expiração do token recebido e refaz o login quando o token já chega vencido.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mensagens enviadas ao usuário
const (
	DefaultText    = "Authentication required - we need you to sign in to proceed with this task."
	DefaultTitle   = "Click to sign in"
	MsgTokenStale  = "Your token expired. Please sign in again."
	MsgLoginFailed = "Login failed or timed out. Please try again."
	MsgSignInWait  = "Please sign in using the card above, or type the code shown after signing in."
)

// Valores padrão das configurações
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultSkew       = 5 * time.Minute
)

// ErrMissingConnection é retornado quando a conexão OAuth não foi configurada
var ErrMissingConnection = errors.New("nome da conexão OAuth não configurado")

// Settings configura o sub-fluxo
type Settings struct {
	ConnectionName string
	Text           string
	Title          string
	Timeout        time.Duration
	MaxRetries     int
	Skew           time.Duration
}

// DefaultSettings retorna as configurações padrão para a conexão
func DefaultSettings(connection string) Settings {
	return Settings{
		ConnectionName: connection,
		Text:           DefaultText,
		Title:          DefaultTitle,
		Timeout:        DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		Skew:           DefaultSkew,
	}
}

// Validate valida as configurações, preenchendo os valores ausentes com os padrões
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.ConnectionName) == "" {
		return ErrMissingConnection
	}
	if s.Text == "" {
		s.Text = DefaultText
	}
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = DefaultMaxRetries
	}
	if s.Skew <= 0 {
		s.Skew = DefaultSkew
	}
	return nil
}

// Provider é o provedor de login
type Provider interface {
	// GetToken retorna o token do usuário na conexão, vazio quando não há token.
	// magicCode pode ser vazio.
	GetToken(ctx context.Context, userID, connection, magicCode string) (string, error)

	// SignInLink retorna o link para o usuário fazer login
	SignInLink(ctx context.Context, userID, connection string) (string, error)

	// SignOut remove o token do usuário na conexão
	SignOut(ctx context.Context, userID, connection string) error
}

// TokenDecoder lê a expiração e a identidade de um token
type TokenDecoder interface {
	ExpiresAt(token string) (time.Time, error)
	Identity(token string) (name, upn string, err error)
}

// UserTokenInfo é o token em cache por usuário
type UserTokenInfo struct {
	Token string `json:"token,omitempty"`
}

// UserInfo guarda a identidade do usuário lida do token
type UserInfo struct {
	UserName          string `json:"user_name,omitempty"`
	UserPrincipalName string `json:"upn,omitempty"`
}

// Status é o resultado de um passo do sub-fluxo
type Status int

const (
	// StatusPending indica que o cartão de login foi enviado e o fluxo aguarda o token
	StatusPending Status = iota
	// StatusSucceeded indica que Result.Token é válido
	StatusSucceeded
	// StatusFailed indica que a autenticação não foi concluída
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result é o retorno de Begin e Continue
type Result struct {
	Status Status
	Token  string
}

// State é o token de retomada do sub-fluxo
type State struct {
	Retries         int       `json:"retries"`
	Attempts        int       `json:"attempts"`
	PromptExpiresAt time.Time `json:"prompt_expires_at"`
}
