package websocket

import (
	"math/rand/v2"
	"sync"
	"time"
)

type pendingMove struct {
	round int
	timer *time.Timer
}

// botScheduler delays bot moves by a random thinking time. At most one move is
// pending per game; scheduling again replaces it.
type botScheduler struct {
	mutex   sync.Mutex
	pending map[string]*pendingMove

	delay func() time.Duration
	play  func(gameID string, round int)
}

func newBotScheduler(thinkMin, thinkMax time.Duration, play func(gameID string, round int)) *botScheduler {
	return &botScheduler{
		pending: make(map[string]*pendingMove),
		delay:   thinkingTime(thinkMin, thinkMax),
		play:    play,
	}
}

func thinkingTime(thinkMin, thinkMax time.Duration) func() time.Duration {
	return func() time.Duration {
		if thinkMax <= thinkMin {
			return thinkMin
		}

		return thinkMin + rand.N(thinkMax-thinkMin+1)
	}
}

func (that *botScheduler) Schedule(gameID string, round int) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if current, ok := that.pending[gameID]; ok {
		current.timer.Stop()
	}

	move := &pendingMove{round: round}
	move.timer = time.AfterFunc(that.delay(), func() {
		that.mutex.Lock()
		if that.pending[gameID] == move {
			delete(that.pending, gameID)
		}
		that.mutex.Unlock()

		that.play(gameID, round)
	})

	that.pending[gameID] = move
}

// Cancel drops the pending move of the game. A callback that already fired still
// runs, and is rejected by the round check of the game manager.
func (that *botScheduler) Cancel(gameID string) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if current, ok := that.pending[gameID]; ok {
		current.timer.Stop()
		delete(that.pending, gameID)
	}
}

func (that *botScheduler) Pending(gameID string) (int, bool) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	move, ok := that.pending[gameID]
	if !ok {
		return 0, false
	}

	return move.round, true
}

func (that *botScheduler) StopAll() {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	for gameID, move := range that.pending {
		move.timer.Stop()
		delete(that.pending, gameID)
	}
}
