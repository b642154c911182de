package brackets

import (
	"fmt"

	"github.com/Dosada05/league-bot/models"
)

// RoundManager owns the pending fixtures of the current round and the replay order.
//
// During round 1 the user picks fixtures one by one from the queue; every pick is
// appended to the schedule, so when the queue runs dry the schedule holds the full
// pairing list in the order it was played. From then on each round replays the
// schedule unchanged.
type RoundManager struct {
	schedule []models.Match
	queue    []models.Match
	round    int
}

func NewRoundManager(pairings []models.Match) *RoundManager {
	queue := make([]models.Match, len(pairings))
	copy(queue, pairings)
	return &RoundManager{
		schedule: make([]models.Match, 0, len(pairings)),
		queue:    queue,
		round:    1,
	}
}

func (m *RoundManager) Round() int {
	return m.round
}

// Remaining is the number of fixtures still pending in the current round.
func (m *RoundManager) Remaining() int {
	return len(m.queue)
}

func (m *RoundManager) Queue() []models.Match {
	out := make([]models.Match, len(m.queue))
	copy(out, m.queue)
	return out
}

func (m *RoundManager) Schedule() []models.Match {
	out := make([]models.Match, len(m.schedule))
	copy(out, m.schedule)
	return out
}

// SelectNext takes queue[index] as the next first-round fixture.
func (m *RoundManager) SelectNext(index int) (models.Match, error) {
	if m.round > 1 {
		return models.Match{}, ErrScheduleFixed
	}
	if index < 0 || index >= len(m.queue) {
		return models.Match{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(m.queue))
	}

	match := m.queue[index]
	m.queue = append(m.queue[:index], m.queue[index+1:]...)
	m.schedule = append(m.schedule, match)
	return match, nil
}

// PopNext returns the next fixture in schedule order. When the queue is empty a new
// round starts first: the queue is refilled from the schedule and roundStarted is true.
func (m *RoundManager) PopNext() (match models.Match, roundStarted bool, err error) {
	if len(m.queue) == 0 {
		if len(m.schedule) == 0 {
			return models.Match{}, false, ErrScheduleNotFixed
		}
		m.queue = make([]models.Match, len(m.schedule))
		copy(m.queue, m.schedule)
		m.round++
		roundStarted = true
	} else if m.round == 1 {
		return models.Match{}, false, ErrScheduleNotFixed
	}

	match = m.queue[0]
	m.queue = m.queue[1:]
	return match, roundStarted, nil
}
