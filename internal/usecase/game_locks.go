package usecase

import (
	"sync"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

// gameLocks hands out one mutex per game. An entry is removed once nobody
// holds or waits for it, so the table only holds games being mutated.
type gameLocks struct {
	mu    sync.Mutex
	locks map[entity.GameID]*gameLock
}

type gameLock struct {
	sync.Mutex
	// holders counts the owner and every waiter; guarded by gameLocks.mu.
	holders int
}

func newGameLocks() *gameLocks {
	return &gameLocks{
		locks: make(map[entity.GameID]*gameLock),
	}
}

func (that *gameLocks) lock(gameID entity.GameID) func() {
	that.mu.Lock()
	entry, ok := that.locks[gameID]
	if !ok {
		entry = &gameLock{}
		that.locks[gameID] = entry
	}
	entry.holders++
	that.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		that.mu.Lock()
		entry.holders--
		if entry.holders == 0 {
			delete(that.locks, gameID)
		}
		that.mu.Unlock()
	}
}
