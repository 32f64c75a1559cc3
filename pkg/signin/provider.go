// Package signin implementa provedores de login para o sub-fluxo OAuth: um provedor OAuth2 com
// authorization code e um provedor de desenvolvimento que emite tokens locais.
package signin

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/state"
	"golang.org/x/oauth2"
)

// DefaultStateTTL é o tempo de vida de um link de login
const DefaultStateTTL = 10 * time.Minute

var (
	// ErrUnknownState é retornado quando o parâmetro state do callback não existe ou expirou
	ErrUnknownState = errors.New("state de login desconhecido ou expirado")
	// ErrMissingClient é retornado quando o client OAuth não foi configurado
	ErrMissingClient = errors.New("client_id e endpoints OAuth são obrigatórios")
)

// Config configura o provedor OAuth2
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string
	StateTTL     time.Duration
}

type pendingSignIn struct {
	UserID     string    `json:"user_id"`
	Connection string    `json:"connection"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type magicCode struct {
	Code string `json:"code"`
}

// Completion é o resultado de um callback de login concluído
type Completion struct {
	UserID     string
	Connection string
	MagicCode  string
	Token      string
}

// Provider é um provedor OAuth2 (authorization code) que guarda os tokens no escopo signin
type Provider struct {
	oauth  *oauth2.Config
	store  state.Store
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

// NewProvider cria o provedor
func NewProvider(cfg Config, store state.Store, log logger.Logger) (*Provider, error) {
	if cfg.ClientID == "" || cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, ErrMissingClient
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = DefaultStateTTL
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		store:  store,
		ttl:    cfg.StateTTL,
		logger: log,
		now:    time.Now,
	}, nil
}

func (p *Provider) tokens(connection string) *state.Accessor[oauth2.Token] {
	return state.NewAccessor[oauth2.Token](p.store, state.ScopeSignIn, connection)
}

func (p *Provider) magicCodes(connection string) *state.Accessor[magicCode] {
	return state.NewAccessor[magicCode](p.store, state.ScopeSignIn, connection+"/magic")
}

func (p *Provider) pending() *state.Accessor[pendingSignIn] {
	return state.NewAccessor[pendingSignIn](p.store, state.ScopeSignIn, "pending")
}

// GetToken implementa oauth.Provider. Com magicCode, o token só é retornado se o código for o
// emitido no callback. Tokens vencidos são renovados com o refresh token quando possível.
func (p *Provider) GetToken(ctx context.Context, userID, connection, magicCode string) (string, error) {
	if magicCode != "" {
		mc, err := p.magicCodes(connection).Get(ctx, userID)
		if err != nil {
			return "", err
		}
		if mc.Code == "" || mc.Code != strings.TrimSpace(magicCode) {
			return "", nil
		}
		if err := p.magicCodes(connection).Delete(ctx, userID); err != nil {
			return "", err
		}
	}

	stored, err := p.tokens(connection).Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if stored.AccessToken == "" {
		return "", nil
	}

	fresh, err := p.oauth.TokenSource(ctx, stored).Token()
	if err != nil {
		p.logger.Warn("Token refresh failed", "user_id", userID, "connection", connection, "error", err)
		return "", nil
	}
	if fresh.AccessToken != stored.AccessToken {
		if err := p.tokens(connection).Set(ctx, userID, fresh); err != nil {
			return "", err
		}
	}
	return fresh.AccessToken, nil
}

// SignInLink implementa oauth.Provider
func (p *Provider) SignInLink(ctx context.Context, userID, connection string) (string, error) {
	nonce := uuid.New().String()
	pending := &pendingSignIn{UserID: userID, Connection: connection, ExpiresAt: p.now().Add(p.ttl)}
	if err := p.pending().Set(ctx, nonce, pending); err != nil {
		return "", err
	}
	return p.oauth.AuthCodeURL(nonce, oauth2.AccessTypeOffline), nil
}

// SignOut implementa oauth.Provider
func (p *Provider) SignOut(ctx context.Context, userID, connection string) error {
	if err := p.tokens(connection).Delete(ctx, userID); err != nil {
		return err
	}
	return p.magicCodes(connection).Delete(ctx, userID)
}

// Complete conclui o login a partir do callback: troca o code pelo token, guarda o token e emite
// o código mágico que o usuário pode digitar no chat.
func (p *Provider) Complete(ctx context.Context, nonce, code string) (*Completion, error) {
	pending, err := p.pending().Get(ctx, nonce)
	if err != nil {
		return nil, err
	}
	if pending.UserID == "" || p.now().After(pending.ExpiresAt) {
		return nil, ErrUnknownState
	}
	if err := p.pending().Delete(ctx, nonce); err != nil {
		return nil, err
	}

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("erro ao trocar code por token: %w", err)
	}
	if err := p.tokens(pending.Connection).Set(ctx, pending.UserID, tok); err != nil {
		return nil, err
	}

	mc, err := newMagicCode()
	if err != nil {
		return nil, err
	}
	if err := p.magicCodes(pending.Connection).Set(ctx, pending.UserID, &magicCode{Code: mc}); err != nil {
		return nil, err
	}

	p.logger.Info("Sign-in completed", "user_id", pending.UserID, "connection", pending.Connection)
	return &Completion{
		UserID:     pending.UserID,
		Connection: pending.Connection,
		MagicCode:  mc,
		Token:      tok.AccessToken,
	}, nil
}

func newMagicCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("erro ao gerar código mágico: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
