package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hugohenrick/intentbot/internal/bootstrap"
	"github.com/hugohenrick/intentbot/pkg/auth"
	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatLoop(t *testing.T) {
	rt, err := bootstrap.Build(&config.Config{
		OAuth:      config.OAuthConfig{ConnectionName: "console", Provider: config.ProviderDev, DevSecret: "dev"},
		Classifier: config.ClassifierConfig{Kind: config.ClassifierKeyword},
		Store:      config.StoreConfig{Kind: config.StoreMemory},
	}, logger.NewNopLogger())
	require.NoError(t, err)
	defer rt.Close()

	in := strings.NewReader("hi\n\nwho am i\nlogin\n/quit\nhi\n")
	var out bytes.Buffer
	require.NoError(t, chatLoop(context.Background(), rt.Bot, in, &out, chatSession{UserID: "u1", ConversationID: "c1"}))

	text := out.String()
	assert.Contains(t, text, "bot: Hi there. What can I do for you?")
	assert.Contains(t, text, "dev://signin/console?user=u1")
	assert.Contains(t, text, "bot: You are Dev User (dev@localhost).")
	assert.Equal(t, 1, strings.Count(text, "bot: Hi there."), "lines after /quit are not read")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("BOT_APP_SECRET", "s3cret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user", "u1", "--name", "Ana"})
	require.NoError(t, rootCmd.Execute())

	svc, err := auth.NewJWTService("s3cret", 0)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "webchat", claims.ChannelID)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Ana", claims.UserName)
}
