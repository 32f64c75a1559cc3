package signin

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hugohenrick/intentbot/pkg/jwt"
)

// Códigos aceitos pelo DevProvider
const (
	DevCodeLogin = "login"
	DevCodeStale = "stale"
)

// DevProvider emite tokens locais assinados com um segredo de desenvolvimento. O usuário responde
// ao cartão de login digitando "login" (token válido por TokenTTL) ou "stale" (token que vence em
// um minuto, para exercitar o novo login).
type DevProvider struct {
	Secret   []byte
	Name     string
	UPN      string
	TokenTTL time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

// NewDevProvider cria um DevProvider
func NewDevProvider(secret []byte, name, upn string) *DevProvider {
	return &DevProvider{
		Secret:   secret,
		Name:     name,
		UPN:      upn,
		TokenTTL: time.Hour,
		tokens:   make(map[string]string),
	}
}

// GetToken implementa oauth.Provider
func (d *DevProvider) GetToken(ctx context.Context, userID, connection, magicCode string) (string, error) {
	key := userID + "/" + connection

	var ttl time.Duration
	switch strings.ToLower(strings.TrimSpace(magicCode)) {
	case "":
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.tokens[key], nil
	case DevCodeLogin:
		ttl = d.TokenTTL
	case DevCodeStale:
		ttl = time.Minute
	default:
		return "", nil
	}

	token, err := jwt.GenerateToken(d.Secret, userID, d.Name, d.UPN, ttl)
	if err != nil {
		return "", err
	}

	d.mu.Lock()
	d.tokens[key] = token
	d.mu.Unlock()
	return token, nil
}

// SignInLink implementa oauth.Provider
func (d *DevProvider) SignInLink(ctx context.Context, userID, connection string) (string, error) {
	return "dev://signin/" + connection + "?user=" + userID, nil
}

// SignOut implementa oauth.Provider
func (d *DevProvider) SignOut(ctx context.Context, userID, connection string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.tokens, userID+"/"+connection)
	return nil
}
