package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/league-bot/brackets"
	"github.com/Dosada05/league-bot/middleware"
	"github.com/Dosada05/league-bot/services"
)

const snapshotWriteWait = 10 * time.Second

// SnapshotSource reads the live state of a chat's tournament.
type SnapshotSource interface {
	Snapshot(chatID int64) (services.SessionSnapshot, error)
}

type LiveHandler struct {
	tournaments SnapshotSource
	hub         *brackets.Hub
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewLiveHandler builds the spectator endpoints. allowedOrigins limits websocket
// origins; empty or "*" accepts any origin.
func NewLiveHandler(tournaments SnapshotSource, hub *brackets.Hub, allowedOrigins []string, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		tournaments: tournaments,
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// SnapshotHandler обрабатывает GET /api/live/{token}
func (h *LiveHandler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	chatID, err := middleware.GetChatIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "spectator token required")
		return
	}

	snap, err := h.tournaments.Snapshot(chatID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": snap}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ServeWs обрабатывает GET /ws/live/{token}. Клиент сразу получает текущий снимок,
// если турнир идёт, а затем все обновления комнаты чата.
func (h *LiveHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	chatID, err := middleware.GetChatIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "spectator token required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("websocket upgrade failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return
	}

	room := brackets.RoomForChat(chatID)
	if snap, err := h.tournaments.Snapshot(chatID); err == nil {
		conn.SetWriteDeadline(time.Now().Add(snapshotWriteWait))
		msg := brackets.LiveMessage{Type: brackets.MessageSnapshot, Payload: snap, RoomID: room}
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Warn("failed to send initial snapshot", slog.Int64("chat_id", chatID), slog.Any("error", err))
			conn.Close()
			return
		}
	}

	client := brackets.NewClient(h.hub, conn, room)
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("spectator connected", slog.Int64("chat_id", chatID), slog.String("room", room))
}
