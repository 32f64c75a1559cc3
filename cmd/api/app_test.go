package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/intentbot/pkg/config"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{Port: "0", BasePath: "/api/v1", Mode: gin.TestMode},
		Bot:  config.BotConfig{AppSecret: "secret", ChannelTokenTTL: time.Hour},
		OAuth: config.OAuthConfig{
			ConnectionName: "aad",
			Provider:       config.ProviderDev,
			DevSecret:      "dev",
		},
		Classifier: config.ClassifierConfig{Kind: config.ClassifierKeyword},
		Store:      config.StoreConfig{Kind: config.StoreMemory},
	}
}

func TestAppRoutes(t *testing.T) {
	app, err := NewApp(testConfig(), logger.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()
	app.SetupRoutes("/api/v1")

	w := httptest.NewRecorder()
	app.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), Version)

	w = httptest.NewRecorder()
	app.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bot/messages", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Provedor dev não expõe callback
	w = httptest.NewRecorder()
	app.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/oauth/callback", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewAppRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Bot.AppSecret = ""
	_, err := NewApp(cfg, logger.NewNopLogger())
	assert.Error(t, err)
}
