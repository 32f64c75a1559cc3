// Package stream mantém as conexões websocket dos canais e entrega nelas as respostas do bot,
// inclusive turnos iniciados pelo servidor, como o token de um login concluído.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hugohenrick/intentbot/internal/adapter/api/dto"
	"github.com/hugohenrick/intentbot/pkg/logger"
	"github.com/hugohenrick/intentbot/pkg/turn"
)

// TurnHandler processa um turno (implementado por bot.Bot)
type TurnHandler interface {
	OnTurn(ctx context.Context, t turn.Turn) error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// a autenticação é feita pelo middleware antes do upgrade
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Session é uma conexão websocket de um usuário em uma conversa
type Session struct {
	ChannelID      string
	UserID         string
	UserName       string
	ConversationID string

	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *Session) write(frame dto.StreamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) activity(req dto.ActivityRequest) turn.Activity {
	req.ConversationID = s.ConversationID
	return req.ToActivity(s.ChannelID, s.UserID, s.UserName)
}

// sessionTurn entrega as mensagens do turno direto no websocket
type sessionTurn struct {
	session  *Session
	activity turn.Activity
}

func (t *sessionTurn) Activity() turn.Activity {
	return t.activity
}

func (t *sessionTurn) Send(ctx context.Context, msg turn.Message) error {
	if msg.Text == "" && msg.SignInCard == nil {
		return turn.ErrEmptyMessage
	}
	return t.session.write(dto.StreamFrame{Type: dto.FrameMessage, Message: &msg})
}

// Hub registra as sessões abertas por usuário
type Hub struct {
	handler TurnHandler
	logger  logger.Logger

	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

// NewHub cria o hub
func NewHub(handler TurnHandler, log logger.Logger) *Hub {
	return &Hub{
		handler:  handler,
		logger:   log,
		sessions: make(map[string]map[*Session]struct{}),
	}
}

func (h *Hub) add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[s.UserID] == nil {
		h.sessions[s.UserID] = make(map[*Session]struct{})
	}
	h.sessions[s.UserID][s] = struct{}{}
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions[s.UserID], s)
	if len(h.sessions[s.UserID]) == 0 {
		delete(h.sessions, s.UserID)
	}
}

func (h *Hub) userSessions(userID string) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		out = append(out, s)
	}
	return out
}

// Count retorna quantas sessões o usuário tem abertas
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// Serve faz o upgrade da conexão e processa os frames do cliente até o fechamento. A abertura
// da sessão gera um turno conversationUpdate.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, session *Session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "user_id", session.UserID, "error", err)
		return
	}
	session.conn = conn

	h.add(session)
	defer func() {
		h.remove(session)
		conn.Close()
	}()
	h.logger.Info("Stream opened", "user_id", session.UserID, "conversation_id", session.ConversationID)

	ctx := r.Context()
	h.run(ctx, session, session.activity(dto.ActivityRequest{Type: turn.TypeConversationUpdate}))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Stream read error", "user_id", session.UserID, "error", err)
			}
			return
		}

		var req dto.ActivityRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			h.sendError(session, "JSON inválido: "+err.Error())
			continue
		}
		req.ConversationID = session.ConversationID
		if msg := req.Validate(); msg != "" {
			h.sendError(session, msg)
			continue
		}

		h.run(ctx, session, session.activity(req))
	}
}

// NotifyToken avisa, com um evento tokens/response, todas as sessões abertas do usuário de que o
// login foi concluído. O bot relê o token do provedor. Retorna em quantas sessões o evento foi
// entregue.
func (h *Hub) NotifyToken(ctx context.Context, userID string) int {
	delivered := 0
	for _, s := range h.userSessions(userID) {
		activity := s.activity(dto.ActivityRequest{
			Type: turn.TypeEvent,
			Name: turn.EventTokenResponse,
		})
		if h.run(ctx, s, activity) {
			delivered++
		}
	}
	return delivered
}

func (h *Hub) run(ctx context.Context, s *Session, activity turn.Activity) bool {
	t := &sessionTurn{session: s, activity: activity}
	if err := h.handler.OnTurn(ctx, t); err != nil {
		h.logger.Error("Stream turn failed", "user_id", s.UserID, "conversation_id", s.ConversationID, "error", err)
		h.sendError(s, err.Error())
		return false
	}
	return true
}

func (h *Hub) sendError(s *Session, message string) {
	if err := s.write(dto.StreamFrame{Type: dto.FrameError, Error: message}); err != nil {
		h.logger.Debug("Failed to send stream error", "user_id", s.UserID, "error", err)
	}
}
