package signin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/hugohenrick/intentbot/pkg/jwt"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(t *testing.T) *Provider {
	t.Helper()
	srv := tokenServer(t)
	p, err := NewProvider(Config{
		ClientID:    "bot",
		AuthURL:     "https://login.example/authorize",
		TokenURL:    srv.URL,
		RedirectURL: "https://bot.example/api/v1/oauth/callback",
		Scopes:      []string{"openid"},
	}, state.NewMemoryStore(), logger.NewNopLogger())
	require.NoError(t, err)
	return p
}

func stateParam(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestSignInRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	tok, err := p.GetToken(ctx, "u1", "aad", "")
	require.NoError(t, err)
	assert.Empty(t, tok)

	link, err := p.SignInLink(ctx, "u1", "aad")
	require.NoError(t, err)
	assert.Contains(t, link, "client_id=bot")
	nonce := stateParam(t, link)
	require.NotEmpty(t, nonce)

	done, err := p.Complete(ctx, nonce, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "u1", done.UserID)
	assert.Equal(t, "aad", done.Connection)
	assert.Equal(t, "access-1", done.Token)
	assert.Len(t, done.MagicCode, 6)

	tok, err = p.GetToken(ctx, "u1", "aad", "000000x")
	require.NoError(t, err)
	assert.Empty(t, tok, "wrong magic code")

	tok, err = p.GetToken(ctx, "u1", "aad", done.MagicCode)
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)

	tok, err = p.GetToken(ctx, "u1", "aad", "")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)

	_, err = p.Complete(ctx, nonce, "good-code")
	assert.ErrorIs(t, err, ErrUnknownState, "state is single use")

	require.NoError(t, p.SignOut(ctx, "u1", "aad"))
	tok, err = p.GetToken(ctx, "u1", "aad", "")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestCompleteRejectsExpiredState(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)
	link, err := p.SignInLink(ctx, "u1", "aad")
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = p.Complete(ctx, stateParam(t, link), "good-code")
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestCompleteExchangeFailure(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)
	link, err := p.SignInLink(ctx, "u1", "aad")
	require.NoError(t, err)

	_, err = p.Complete(ctx, stateParam(t, link), "bad-code")
	assert.Error(t, err)
}

func TestNewProviderRequiresClient(t *testing.T) {
	_, err := NewProvider(Config{}, state.NewMemoryStore(), logger.NewNopLogger())
	assert.ErrorIs(t, err, ErrMissingClient)
}

func TestDevProvider(t *testing.T) {
	ctx := context.Background()
	d := NewDevProvider([]byte("dev"), "Dev User", "dev@localhost")
	dec := jwt.NewDecoder()

	tok, err := d.GetToken(ctx, "u1", "aad", "")
	require.NoError(t, err)
	assert.Empty(t, tok)

	tok, err = d.GetToken(ctx, "u1", "aad", "nonsense")
	require.NoError(t, err)
	assert.Empty(t, tok)

	tok, err = d.GetToken(ctx, "u1", "aad", "LOGIN")
	require.NoError(t, err)
	name, upn, err := dec.Identity(tok)
	require.NoError(t, err)
	assert.Equal(t, "Dev User", name)
	assert.Equal(t, "dev@localhost", upn)

	cached, err := d.GetToken(ctx, "u1", "aad", "")
	require.NoError(t, err)
	assert.Equal(t, tok, cached)

	stale, err := d.GetToken(ctx, "u1", "aad", DevCodeStale)
	require.NoError(t, err)
	exp, err := dec.ExpiresAt(stale)
	require.NoError(t, err)
	assert.True(t, exp.Before(time.Now().Add(5*time.Minute)))

	require.NoError(t, d.SignOut(ctx, "u1", "aad"))
	tok, err = d.GetToken(ctx, "u1", "aad", "")
	require.NoError(t, err)
	assert.Empty(t, tok)
}
