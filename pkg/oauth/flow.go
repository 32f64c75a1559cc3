package oauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/state"
	"github.com/hugohenrick/intentbot/pkg/turn"
)

// Flow conduz o sub-fluxo de autenticação de um usuário
type Flow struct {
	settings Settings
	provider Provider
	decoder  TokenDecoder
	tokens   *state.Accessor[UserTokenInfo]
	users    *state.Accessor[UserInfo]
	logger   logger.Logger
	now      func() time.Time
}

// NewFlow cria o sub-fluxo
func NewFlow(settings Settings, provider Provider, decoder TokenDecoder, store state.Store, log logger.Logger) (*Flow, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Flow{
		settings: settings,
		provider: provider,
		decoder:  decoder,
		tokens:   state.NewAccessor[UserTokenInfo](store, state.ScopeUser, "UserTokenInfo"),
		users:    state.NewAccessor[UserInfo](store, state.ScopeUser, "UserInfo"),
		logger:   log,
		now:      time.Now,
	}, nil
}

// WithClock substitui o relógio do fluxo
func (f *Flow) WithClock(now func() time.Time) *Flow {
	f.now = now
	return f
}

// Settings retorna as configurações em uso
func (f *Flow) Settings() Settings {
	return f.settings
}

// UserInfo retorna a identidade em cache do usuário
func (f *Flow) UserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	return f.users.Get(ctx, userID)
}

// Begin inicia o sub-fluxo. Um token em cache ainda válido conclui o fluxo sem interação.
func (f *Flow) Begin(ctx context.Context, t turn.Turn, st *State) (Result, error) {
	*st = State{}
	userID := t.Activity().UserID

	info, err := f.tokens.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if info.Token != "" && f.fresh(info.Token) {
		f.logger.Debug("Using cached token", "user_id", userID)
		if err := f.persist(ctx, userID, info.Token); err != nil {
			return Result{}, err
		}
		return Result{Status: StatusSucceeded, Token: info.Token}, nil
	}

	return f.prompt(ctx, t, st)
}

// Continue retoma o sub-fluxo com a atividade do turno atual. O evento tokens/response só avisa
// que o login terminou: o token é sempre relido do provedor, nunca tirado do evento. Respostas
// que não trazem um código válido mantêm o cartão pendente até MaxRetries tentativas.
func (f *Flow) Continue(ctx context.Context, t turn.Turn, st *State) (Result, error) {
	a := t.Activity()
	conn := f.settings.ConnectionName

	if !st.PromptExpiresAt.IsZero() && f.now().After(st.PromptExpiresAt) {
		f.logger.Info("Sign-in prompt timed out", "user_id", a.UserID)
		return f.fail(ctx, t)
	}

	switch {
	case a.IsTokenResponse():
		token, err := f.provider.GetToken(ctx, a.UserID, conn, "")
		if err != nil {
			f.logger.Warn("Token lookup failed", "user_id", a.UserID, "connection", conn, "error", err)
		}
		if token == "" {
			f.logger.Warn("Token response without a token from the provider", "user_id", a.UserID, "connection", conn)
			return Result{Status: StatusPending}, nil
		}
		return f.validate(ctx, t, st, token)

	case a.IsMessage():
		var token string
		if code := strings.TrimSpace(a.Text); code != "" {
			tok, err := f.provider.GetToken(ctx, a.UserID, conn, code)
			if err != nil {
				f.logger.Warn("Magic code exchange failed", "user_id", a.UserID, "error", err)
			}
			token = tok
		}
		if token != "" {
			return f.validate(ctx, t, st, token)
		}

		st.Attempts++
		if st.Attempts >= f.settings.MaxRetries {
			f.logger.Info("Sign-in reply limit reached", "user_id", a.UserID, "attempts", st.Attempts)
			return f.fail(ctx, t)
		}
		if err := t.Send(ctx, turn.Text(MsgSignInWait)); err != nil {
			return Result{}, err
		}
	}

	return Result{Status: StatusPending}, nil
}

func (f *Flow) prompt(ctx context.Context, t turn.Turn, st *State) (Result, error) {
	userID := t.Activity().UserID
	conn := f.settings.ConnectionName

	token, err := f.provider.GetToken(ctx, userID, conn, "")
	if err != nil {
		f.logger.Warn("Token lookup failed", "user_id", userID, "connection", conn, "error", err)
	}
	if token != "" {
		return f.validate(ctx, t, st, token)
	}

	link, err := f.provider.SignInLink(ctx, userID, conn)
	if err != nil {
		f.logger.Error("Failed to create sign-in link", "user_id", userID, "connection", conn, "error", err)
		return f.fail(ctx, t)
	}

	card := &turn.SignInCard{Text: f.settings.Text, Title: f.settings.Title, Link: link}
	if err := t.Send(ctx, turn.Message{SignInCard: card}); err != nil {
		return Result{}, err
	}

	st.PromptExpiresAt = f.now().Add(f.settings.Timeout)
	st.Attempts = 0
	return Result{Status: StatusPending}, nil
}

func (f *Flow) validate(ctx context.Context, t turn.Turn, st *State, token string) (Result, error) {
	userID := t.Activity().UserID
	if token == "" {
		return f.fail(ctx, t)
	}

	exp, err := f.decoder.ExpiresAt(token)
	if err != nil {
		f.logger.Warn("Received token could not be decoded", "user_id", userID, "error", err)
		return f.fail(ctx, t)
	}

	if !exp.After(f.now().Add(f.settings.Skew)) {
		if st.Retries >= f.settings.MaxRetries {
			f.logger.Warn("Stale token retry limit reached", "user_id", userID, "retries", st.Retries)
			return f.fail(ctx, t)
		}
		st.Retries++
		f.logger.Info("Received stale token, signing out", "user_id", userID, "expires_at", exp, "retry", st.Retries)

		if err := f.provider.SignOut(ctx, userID, f.settings.ConnectionName); err != nil {
			f.logger.Warn("Sign-out failed", "user_id", userID, "error", err)
		}
		if err := t.Send(ctx, turn.Text(MsgTokenStale)); err != nil {
			return Result{}, err
		}
		return f.prompt(ctx, t, st)
	}

	if err := f.persist(ctx, userID, token); err != nil {
		return Result{}, err
	}
	return Result{Status: StatusSucceeded, Token: token}, nil
}

func (f *Flow) fail(ctx context.Context, t turn.Turn) (Result, error) {
	if err := f.persist(ctx, t.Activity().UserID, ""); err != nil {
		return Result{}, err
	}
	if err := t.Send(ctx, turn.Text(MsgLoginFailed)); err != nil {
		return Result{}, err
	}
	return Result{Status: StatusFailed}, nil
}

// persist grava o token e a identidade do usuário apenas quando mudaram
func (f *Flow) persist(ctx context.Context, userID, token string) error {
	info, err := f.tokens.Get(ctx, userID)
	if err != nil {
		return err
	}
	if info.Token != token {
		info.Token = token
		if err := f.tokens.Set(ctx, userID, info); err != nil {
			return err
		}
	}
	if token == "" {
		return nil
	}

	name, upn, err := f.decoder.Identity(token)
	if err != nil {
		return fmt.Errorf("erro ao ler identidade do token: %w", err)
	}
	user, err := f.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.UserName == name && user.UserPrincipalName == upn {
		return nil
	}
	user.UserName, user.UserPrincipalName = name, upn
	return f.users.Set(ctx, userID, user)
}

func (f *Flow) fresh(token string) bool {
	exp, err := f.decoder.ExpiresAt(token)
	if err != nil {
		return false
	}
	return exp.After(f.now().Add(f.settings.Skew))
}
