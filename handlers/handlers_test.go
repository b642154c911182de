package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-bot/brackets"
	"github.com/Dosada05/league-bot/middleware"
	"github.com/Dosada05/league-bot/models"
	"github.com/Dosada05/league-bot/services"
)

const testChat int64 = -100777

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingUpdates struct {
	mu      sync.Mutex
	updates []tgbotapi.Update
	ctxErr  error
}

func (r *recordingUpdates) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
	r.ctxErr = ctx.Err()
}

type fakeSnapshots map[int64]services.SessionSnapshot

func (f fakeSnapshots) Snapshot(chatID int64) (services.SessionSnapshot, error) {
	snap, ok := f[chatID]
	if !ok {
		return services.SessionSnapshot{}, services.ErrSessionNotFound
	}
	return snap, nil
}

type fakeArchive struct {
	byID   map[string]*models.ArchivedTournament
	err    error
	limits []int
}

func (f *fakeArchive) Archive(context.Context, services.FinalReport) error { return nil }

func (f *fakeArchive) GetByID(_ context.Context, id string) (*models.ArchivedTournament, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.byID[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return t, nil
}

func (f *fakeArchive) ListByChat(_ context.Context, chatID int64, limit, _ int) ([]models.ArchivedTournament, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.limits = append(f.limits, limit)
	var out []models.ArchivedTournament
	for _, t := range f.byID {
		if t.ChatID == chatID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func TestWebhookHandler(t *testing.T) {
	updates := &recordingUpdates{}
	h := NewWebhookHandler(updates, discardLogger())

	tests := []struct {
		name   string
		body   string
		status int
		count  int
	}{
		{"valid update", `{"update_id":7,"message":{"message_id":1,"chat":{"id":-100777,"type":"group"},"text":"/start","future_field":true}}`, http.StatusOK, 1},
		{"broken json", `{"update_id":`, http.StatusBadRequest, 1},
		{"empty body", ``, http.StatusBadRequest, 1},
		{"two values", `{"update_id":1}{"update_id":2}`, http.StatusBadRequest, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook/x", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
			assert.Len(t, updates.updates, tt.count)
		})
	}

	require.Len(t, updates.updates, 1)
	assert.Equal(t, 7, updates.updates[0].UpdateID)
	assert.Equal(t, testChat, updates.updates[0].Message.Chat.ID)
	assert.NoError(t, updates.ctxErr)
}

func newLiveRouter(t *testing.T, snaps fakeSnapshots, hub *brackets.Hub) (*chi.Mux, *middleware.SpectatorTokens) {
	t.Helper()
	tokens := middleware.NewSpectatorTokens("secret", time.Hour, "http://localhost")
	h := NewLiveHandler(snaps, hub, nil, discardLogger())
	r := chi.NewRouter()
	r.With(tokens.RequireSpectator).Get("/api/live/{token}", h.SnapshotHandler)
	r.With(tokens.RequireSpectator).Get("/ws/live/{token}", h.ServeWs)
	return r, tokens
}

func TestLiveHandler_Snapshot(t *testing.T) {
	snaps := fakeSnapshots{testChat: {
		ChatID: testChat,
		State:  models.StateRecordResult,
		Round:  1,
		Teams:  []models.TeamKey{"blue", "red"},
	}}
	router, tokens := newLiveRouter(t, snaps, brackets.NewHub(discardLogger()))

	live, err := tokens.Issue(testChat)
	require.NoError(t, err)
	idle, err := tokens.Issue(42)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"running tournament", live, http.StatusOK},
		{"no tournament", idle, http.StatusNotFound},
		{"bad token", "nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/live/"+tt.token, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/live/"+live, nil))
	var body struct {
		Tournament services.SessionSnapshot `json:"tournament"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.StateRecordResult, body.Tournament.State)
	assert.Equal(t, []models.TeamKey{"blue", "red"}, body.Tournament.Teams)
}

func TestLiveHandler_Websocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := brackets.NewHub(discardLogger())
	go hub.Run(ctx)

	snaps := fakeSnapshots{testChat: {ChatID: testChat, State: models.StateSelectMatch, Round: 1}}
	router, tokens := newLiveRouter(t, snaps, hub)
	srv := httptest.NewServer(router)
	defer srv.Close()

	token, err := tokens.Issue(testChat)
	require.NoError(t, err)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live/" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first brackets.LiveMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, brackets.MessageSnapshot, first.Type)

	room := brackets.RoomForChat(testChat)
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(room, brackets.LiveMessage{Type: brackets.MessageScoreboardUpdated, RoomID: room})
	var update brackets.LiveMessage
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, brackets.MessageScoreboardUpdated, update.Type)
}

func TestLiveHandler_WebsocketRejectsBadToken(t *testing.T) {
	router, _ := newLiveRouter(t, fakeSnapshots{}, brackets.NewHub(discardLogger()))
	srv := httptest.NewServer(router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/live/bogus", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestArchiveHandler(t *testing.T) {
	const id = "5f0c7a4e-8d43-4bd5-9a57-2a4f3f0f1c11"
	archive := &fakeArchive{byID: map[string]*models.ArchivedTournament{
		id: {ID: id, ChatID: testChat, Teams: []models.TeamKey{"blue", "red"}, RoundsPlayed: 1},
	}}
	h := NewArchiveHandler(archive)
	r := chi.NewRouter()
	r.Get("/api/archive/chats/{chatID}", h.ListByChatHandler)
	r.Get("/api/archive/{tournamentID}", h.GetByIDHandler)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"get existing", "/api/archive/" + id, http.StatusOK},
		{"get missing", "/api/archive/0b8f5a44-1f5e-4e55-8f5a-7c1d7c1d7c1d", http.StatusNotFound},
		{"get invalid id", "/api/archive/42", http.StatusBadRequest},
		{"list chat", "/api/archive/chats/-100777", http.StatusOK},
		{"list bad chat", "/api/archive/chats/abc", http.StatusBadRequest},
		{"list bad limit", "/api/archive/chats/-100777?limit=0", http.StatusBadRequest},
		{"list bad offset", "/api/archive/chats/-100777?offset=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, []int{defaultArchivePageSize}, archive.limits)
}

func TestArchiveHandler_Disabled(t *testing.T) {
	h := NewArchiveHandler(&fakeArchive{err: services.ErrArchiveDisabled})
	r := chi.NewRouter()
	r.Get("/api/archive/chats/{chatID}", h.ListByChatHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archive/chats/1", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
