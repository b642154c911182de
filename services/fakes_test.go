package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Dosada05/league-bot/brackets"
	"github.com/Dosada05/league-bot/models"
	"github.com/Dosada05/league-bot/repositories"
	"github.com/Dosada05/league-bot/storage"
)

type scorePromptCall struct {
	Round int
	Match models.Match
}

type fakeMessenger struct {
	mu     sync.Mutex
	nextID int

	selections   [][]models.TeamKey
	pickers      [][]models.Match
	firstPicks   []bool
	scorePrompts []scorePromptCall
	boards       []ScoreboardView
	boardEdits   int
	reports      []FinalReport
	invalid      []MessageRef
	roundNotices []int
	cancelled    int
	deleted      []MessageRef

	failRender bool
}

func (m *fakeMessenger) ref(chatID int64, prompt *MessageRef) MessageRef {
	if prompt != nil {
		return *prompt
	}
	m.nextID++
	return MessageRef{ChatID: chatID, MessageID: m.nextID}
}

func (m *fakeMessenger) RenderSelectionPrompt(_ context.Context, chatID int64, prompt *MessageRef, selected []models.Team) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]models.TeamKey, len(selected))
	for i, t := range selected {
		keys[i] = t.Key
	}
	m.selections = append(m.selections, keys)
	if m.failRender {
		return MessageRef{}, errors.New("chat not found")
	}
	return m.ref(chatID, prompt), nil
}

func (m *fakeMessenger) RenderMatchPicker(_ context.Context, chatID int64, prompt *MessageRef, queue []models.Match, firstPick bool) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pickers = append(m.pickers, queue)
	m.firstPicks = append(m.firstPicks, firstPick)
	return m.ref(chatID, prompt), nil
}

func (m *fakeMessenger) RenderScorePrompt(_ context.Context, chatID int64, prompt *MessageRef, round int, match models.Match) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scorePrompts = append(m.scorePrompts, scorePromptCall{Round: round, Match: match})
	return m.ref(chatID, prompt), nil
}

func (m *fakeMessenger) RenderScoreboard(_ context.Context, chatID int64, board *MessageRef, view ScoreboardView) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards = append(m.boards, view)
	if board != nil {
		m.boardEdits++
	}
	return m.ref(chatID, board), nil
}

func (m *fakeMessenger) RenderFinalReport(_ context.Context, chatID int64, report FinalReport) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return m.ref(chatID, nil), nil
}

func (m *fakeMessenger) NotifyInvalidScore(_ context.Context, chatID int64) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := m.ref(chatID, nil)
	m.invalid = append(m.invalid, ref)
	return ref, nil
}

func (m *fakeMessenger) NotifyRoundStarted(_ context.Context, chatID int64, round int) (MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundNotices = append(m.roundNotices, round)
	return m.ref(chatID, nil), nil
}

func (m *fakeMessenger) NotifyCancelled(_ context.Context, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled++
	return nil
}

func (m *fakeMessenger) DeleteMessages(_ context.Context, refs ...MessageRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, refs...)
}

func (m *fakeMessenger) lastBoard() ScoreboardView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boards[len(m.boards)-1]
}

type fakeTimer struct {
	after   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{after: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Fire runs the i-th timer callback unless it was stopped.
func (c *fakeClock) Fire(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	if !t.stopped {
		t.fn()
	}
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	types []string
	rooms []string
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms = append(b.rooms, roomID)
	if msg, ok := message.(brackets.LiveMessage); ok {
		b.types = append(b.types, msg.Type)
	}
}

type fakeArchiver struct {
	mu      sync.Mutex
	reports []FinalReport
	err     error
}

func (a *fakeArchiver) Archive(_ context.Context, report FinalReport) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, report)
	return a.err
}

type fakeArchiveStore struct {
	mu      sync.Mutex
	saved   map[string]*models.ArchivedTournament
	urls    map[string]string
	saveErr error
}

func newFakeArchiveStore() *fakeArchiveStore {
	return &fakeArchiveStore{
		saved: make(map[string]*models.ArchivedTournament),
		urls:  make(map[string]string),
	}
}

func (s *fakeArchiveStore) Save(_ context.Context, t *models.ArchivedTournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[t.ID] = t
	return nil
}

func (s *fakeArchiveStore) UpdateReportURL(_ context.Context, id string, reportURL *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.saved[id]
	if !ok {
		return errors.New("tournament not found")
	}
	t.ReportURL = reportURL
	s.urls[id] = *reportURL
	return nil
}

func (s *fakeArchiveStore) Get(_ context.Context, id string) (*models.ArchivedTournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.saved[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (s *fakeArchiveStore) ListByChat(_ context.Context, chatID int64, _, _ int) ([]models.ArchivedTournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ArchivedTournament
	for _, t := range s.saved {
		if t.ChatID == chatID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return nil, u.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return storage.PublicURL("https://cdn.example.com", key)
}
