package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/Dosada05/league-bot/brackets"
	"github.com/Dosada05/league-bot/models"
)

// Session is the state of one chat's tournament. All fields are guarded by mu; the
// service locks it for the whole handling of an event or a timer fire.
type Session struct {
	mu sync.Mutex

	ID        string
	ChatID    int64
	StartedAt time.Time

	state    models.ConversationState
	teams    []models.Team
	rounds   *brackets.RoundManager
	results  map[models.Match][]models.RoundScore
	matchLog []models.MatchResult
	current  *models.Match

	finished   bool
	finishedAt time.Time
	reason     models.FinishReason

	prompt      *MessageRef
	scoreboard  *MessageRef
	roundNotice *MessageRef
	ephemeral   []MessageRef

	timer Timer
}

func newSession(chatID int64, startedAt time.Time) *Session {
	return &Session{
		ChatID:    chatID,
		StartedAt: startedAt,
		state:     models.StateSelectTeams,
		results:   make(map[models.Match][]models.RoundScore),
	}
}

func (s *Session) State() models.ConversationState {
	return s.state
}

func (s *Session) Finished() bool {
	return s.finished
}

func (s *Session) Teams() []models.Team {
	out := make([]models.Team, len(s.teams))
	copy(out, s.teams)
	return out
}

func (s *Session) teamKeys() []models.TeamKey {
	out := make([]models.TeamKey, len(s.teams))
	for i, t := range s.teams {
		out[i] = t.Key
	}
	return out
}

// Round is 0 until the selection is confirmed.
func (s *Session) Round() int {
	if s.rounds == nil {
		return 0
	}
	return s.rounds.Round()
}

func (s *Session) Queue() []models.Match {
	if s.rounds == nil {
		return nil
	}
	return s.rounds.Queue()
}

func (s *Session) Schedule() []models.Match {
	if s.rounds == nil {
		return nil
	}
	return s.rounds.Schedule()
}

func (s *Session) MatchLog() []models.MatchResult {
	out := make([]models.MatchResult, len(s.matchLog))
	copy(out, s.matchLog)
	return out
}

func (s *Session) Results(m models.Match) []models.RoundScore {
	out := make([]models.RoundScore, len(s.results[m]))
	copy(out, s.results[m])
	return out
}

func (s *Session) Current() (models.Match, bool) {
	if s.current == nil {
		return models.Match{}, false
	}
	return *s.current, true
}

// toggleTeam adds the team to the selection or removes it when already selected.
func (s *Session) toggleTeam(team models.Team) {
	for i, t := range s.teams {
		if t.Key == team.Key {
			s.teams = append(s.teams[:i], s.teams[i+1:]...)
			return
		}
	}
	s.teams = append(s.teams, team)
}

// confirm builds the pairing list over the selection order and opens round 1.
func (s *Session) confirm(gen brackets.BracketGenerator) error {
	pairings, err := gen.GenerateBracket(brackets.GenerateBracketParams{Teams: s.teamKeys()})
	if err != nil {
		return err
	}
	s.rounds = brackets.NewRoundManager(pairings)
	s.state = models.StateSelectMatch
	return nil
}

func (s *Session) pickMatch(index int) (models.Match, error) {
	match, err := s.rounds.SelectNext(index)
	if err != nil {
		return models.Match{}, err
	}
	s.current = &match
	s.state = models.StateRecordResult
	return match, nil
}

// record appends the score of the current match at the current round.
func (s *Session) record(home, away int, at time.Time) (models.MatchResult, error) {
	if s.current == nil {
		return models.MatchResult{}, ErrNoCurrentMatch
	}
	m := *s.current
	round := s.rounds.Round()
	for _, prev := range s.results[m] {
		if prev.Round == round {
			return models.MatchResult{}, fmt.Errorf("%w: %s-%s already has a round %d score", ErrInvalidState, m.Home, m.Away, round)
		}
	}

	result := models.MatchResult{
		Round:     round,
		Home:      m.Home,
		Away:      m.Away,
		HomeScore: home,
		AwayScore: away,
		PlayedAt:  at,
	}
	s.results[m] = append(s.results[m], models.RoundScore{Round: round, HomeScore: home, AwayScore: away})
	s.matchLog = append(s.matchLog, result)
	s.current = nil
	return result, nil
}

// advance loads the next fixture after a recorded score. In round 1 with fixtures
// left it returns needsPick so the user orders the next one.
func (s *Session) advance() (next models.Match, needsPick, roundStarted bool, err error) {
	if s.rounds.Round() == 1 && s.rounds.Remaining() > 0 {
		s.state = models.StateSelectMatch
		return models.Match{}, true, false, nil
	}
	next, roundStarted, err = s.rounds.PopNext()
	if err != nil {
		return models.Match{}, false, false, err
	}
	s.current = &next
	s.state = models.StateRecordResult
	return next, false, roundStarted, nil
}

func (s *Session) standings() []models.Standing {
	return brackets.ComputeStandings(s.teams, s.matchLog)
}

func (s *Session) scoreboardView() ScoreboardView {
	return ScoreboardView{
		Round:     s.Round(),
		Standings: s.standings(),
		Matches:   s.MatchLog(),
	}
}

// finalReport is a pure function of the session, so it renders identically every time.
func (s *Session) finalReport() FinalReport {
	return FinalReport{
		TournamentID: s.ID,
		ChatID:       s.ChatID,
		Teams:        s.teamKeys(),
		Rounds:       s.Round(),
		Standings:    brackets.ComputeFinalStandings(s.teams, s.results),
		Matches:      s.MatchLog(),
		Reason:       s.reason,
		StartedAt:    s.StartedAt,
		FinishedAt:   s.finishedAt,
	}
}

// takeMessagesToDelete returns the prompt, round notice and ephemeral inputs and
// forgets them.
func (s *Session) takeMessagesToDelete() []MessageRef {
	refs := make([]MessageRef, 0, len(s.ephemeral)+2)
	refs = append(refs, s.ephemeral...)
	if s.prompt != nil {
		refs = append(refs, *s.prompt)
	}
	if s.roundNotice != nil {
		refs = append(refs, *s.roundNotice)
	}
	s.ephemeral = nil
	s.prompt = nil
	s.roundNotice = nil
	return refs
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

// SessionSnapshot is a read-only copy of the live state for spectators.
type SessionSnapshot struct {
	TournamentID string                   `json:"tournament_id,omitempty"`
	ChatID       int64                    `json:"chat_id"`
	State        models.ConversationState `json:"state"`
	Round        int                      `json:"round"`
	Teams        []models.TeamKey         `json:"teams"`
	Current      *models.Match            `json:"current,omitempty"`
	Queue        []models.Match           `json:"queue"`
	Schedule     []models.Match           `json:"schedule"`
	Standings    []models.Standing        `json:"standings"`
	Matches      []models.MatchResult     `json:"matches"`
	StartedAt    time.Time                `json:"started_at"`
}

func (s *Session) snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		TournamentID: s.ID,
		ChatID:       s.ChatID,
		State:        s.state,
		Round:        s.Round(),
		Teams:        s.teamKeys(),
		Queue:        s.Queue(),
		Schedule:     s.Schedule(),
		Standings:    s.standings(),
		Matches:      s.MatchLog(),
		StartedAt:    s.StartedAt,
	}
	if m, ok := s.Current(); ok {
		snap.Current = &m
	}
	return snap
}
