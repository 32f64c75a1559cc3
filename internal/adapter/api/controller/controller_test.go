package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hugohenrick/intentbot/internal/adapter/api/controller"
	"github.com/hugohenrick/intentbot/internal/adapter/api/dto"
	"github.com/hugohenrick/intentbot/internal/adapter/api/route"
	"github.com/hugohenrick/intentbot/internal/adapter/api/stream"
	"github.com/hugohenrick/intentbot/internal/sample"
	"github.com/hugohenrick/intentbot/pkg/auth"
	"github.com/hugohenrick/intentbot/pkg/bot"
	"github.com/hugohenrick/intentbot/pkg/chat"
	"github.com/hugohenrick/intentbot/pkg/jwt"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/oauth"
	"github.com/hugohenrick/intentbot/pkg/signin"
	"github.com/hugohenrick/intentbot/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	router *gin.Engine
	token  string
}

func newServer(t *testing.T, provider oauth.Provider, signIn *signin.Provider, store state.Store) *server {
	t.Helper()
	log := logger.NewNopLogger()

	history := chat.NewMemoryRepository()
	b, err := sample.NewBot(sample.Options{
		Store:      store,
		Provider:   provider,
		Settings:   oauth.DefaultSettings("aad"),
		Transcript: history,
		Logger:     log,
	})
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService("channel-secret", time.Hour)
	require.NoError(t, err)
	token, err := jwtService.GenerateToken("webchat", "u1", "Ana")
	require.NoError(t, err)

	hub := stream.NewHub(b, log)
	router := route.NewRouter(gin.TestMode, nil)
	api := router.Group("/api/v1")
	route.ConfigureHealthRoutes(api, "test")
	route.ConfigureBotRoutes(api, controller.NewBotController(b, history, hub, log), jwtService)
	if signIn != nil {
		route.ConfigureOAuthRoutes(api, controller.NewOAuthController(signIn, hub, log))
	}
	return &server{router: router, token: token}
}

func (s *server) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) say(t *testing.T, text string) []string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/bot/messages", dto.ActivityRequest{Text: text, ConversationID: "c1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.ActivityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "c1", resp.ConversationID)
	texts := []string{}
	for _, m := range resp.Messages {
		texts = append(texts, m.Text)
	}
	return texts
}

func devProvider() oauth.Provider {
	return signin.NewDevProvider([]byte("dev"), "Dev User", "dev@localhost")
}

func TestPostActivity(t *testing.T) {
	s := newServer(t, devProvider(), nil, state.NewMemoryStore())

	assert.Equal(t, []string{sample.MsgGreeting}, s.say(t, "hi"))
	assert.Equal(t, []string{"What's the first value (between 1 and 10)?"}, s.say(t, "sum"))
	assert.Equal(t, []string{"What's the second value (any int32)?"}, s.say(t, "5"))
}

func TestPostActivityValidation(t *testing.T) {
	s := newServer(t, devProvider(), nil, state.NewMemoryStore())

	w := s.do(t, http.MethodPost, "/api/v1/bot/messages", dto.ActivityRequest{ConversationID: "c1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/bot/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/bot/messages", dto.ActivityRequest{Type: "typing", ConversationID: "c1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bot/messages", strings.NewReader(`{"text":"hi","conversation_id":"c1"}`))
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHistory(t *testing.T) {
	s := newServer(t, devProvider(), nil, state.NewMemoryStore())
	s.say(t, "hi")
	s.say(t, "memory")

	w := s.do(t, http.MethodGet, "/api/v1/bot/conversations/c1/history?page_size=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page dto.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 4, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Messages, 3)
	assert.Equal(t, chat.RoleBot, page.Messages[0].Role)
	assert.Equal(t, sample.MsgNothingStored, page.Messages[0].Content)

	w = s.do(t, http.MethodDelete, "/api/v1/bot/conversations/c1/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/bot/conversations/c1/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t, devProvider(), nil, state.NewMemoryStore())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, w.Body.String())
}

func dial(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/bot/stream?conversation_id=ws1&access_token=" + url.QueryEscape(token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) dto.StreamFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame dto.StreamFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestStream(t *testing.T) {
	s := newServer(t, devProvider(), nil, state.NewMemoryStore())
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	conn := dial(t, ts, s.token)
	frame := readFrame(t, conn)
	require.Equal(t, dto.FrameMessage, frame.Type)
	assert.Equal(t, bot.DefaultWelcome, frame.Message.Text)

	require.NoError(t, conn.WriteJSON(dto.ActivityRequest{Text: "hello"}))
	frame = readFrame(t, conn)
	assert.Equal(t, sample.MsgGreeting, frame.Message.Text)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not-json")))
	frame = readFrame(t, conn)
	assert.Equal(t, dto.FrameError, frame.Type)
}

func TestStreamRequiresConversation(t *testing.T) {
	s := newServer(t, devProvider(), nil, state.NewMemoryStore())
	w := s.do(t, http.MethodGet, "/api/v1/bot/stream", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthCallbackResumesConversation(t *testing.T) {
	accessToken, err := jwt.GenerateToken([]byte("idp"), "u1", "Ana", "ana@contoso.com", time.Hour)
	require.NoError(t, err)

	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"` + accessToken + `","token_type":"Bearer","expires_in":3600}`))
	}))
	defer idp.Close()

	store := state.NewMemoryStore()
	provider, err := signin.NewProvider(signin.Config{
		ClientID: "bot",
		AuthURL:  "https://login.example/authorize",
		TokenURL: idp.URL,
	}, store, logger.NewNopLogger())
	require.NoError(t, err)

	s := newServer(t, provider, provider, store)
	ts := httptest.NewServer(s.router)
	defer ts.Close()

	conn := dial(t, ts, s.token)
	readFrame(t, conn) // boas-vindas

	require.NoError(t, conn.WriteJSON(dto.ActivityRequest{Text: "who am i"}))
	frame := readFrame(t, conn)
	require.NotNil(t, frame.Message)
	require.NotNil(t, frame.Message.SignInCard)

	link, err := url.Parse(frame.Message.SignInCard.Link)
	require.NoError(t, err)
	nonce := link.Query().Get("state")
	require.NotEmpty(t, nonce)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/oauth/callback?state="+nonce+"&code=good-code", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data dto.SignInResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Delivered)
	assert.Len(t, resp.Data.MagicCode, 6)

	frame = readFrame(t, conn)
	assert.Equal(t, "You are Ana (ana@contoso.com).", frame.Message.Text)

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/oauth/callback?state="+nonce+"&code=good-code", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientTokenEventIsRejected(t *testing.T) {
	s := newServer(t, devProvider(), nil, state.NewMemoryStore())
	forged, err := jwt.GenerateToken([]byte("other-secret"), "u1", "Mallory", "mallory@example.com", time.Hour)
	require.NoError(t, err)
	event := dto.ActivityRequest{Type: "event", Name: "tokens/response", Value: forged, ConversationID: "c1"}

	w := s.do(t, http.MethodPost, "/api/v1/bot/messages", dto.ActivityRequest{Text: "who am i", ConversationID: "c1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sign_in_card")

	w = s.do(t, http.MethodPost, "/api/v1/bot/messages", event)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "Mallory")

	// o login continua pendente
	assert.Equal(t, []string{oauth.MsgSignInWait}, s.say(t, "hi"))

	ts := httptest.NewServer(s.router)
	defer ts.Close()
	conn := dial(t, ts, s.token)
	readFrame(t, conn) // boas-vindas

	require.NoError(t, conn.WriteJSON(dto.ActivityRequest{Text: "who am i"}))
	frame := readFrame(t, conn)
	require.NotNil(t, frame.Message)
	require.NotNil(t, frame.Message.SignInCard)

	require.NoError(t, conn.WriteJSON(event))
	frame = readFrame(t, conn)
	assert.Equal(t, dto.FrameError, frame.Type)

	require.NoError(t, conn.WriteJSON(dto.ActivityRequest{Text: "hi"}))
	frame = readFrame(t, conn)
	require.NotNil(t, frame.Message)
	assert.Equal(t, oauth.MsgSignInWait, frame.Message.Text)
}
