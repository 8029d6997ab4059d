package gameserver

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameLocks_SerializesSameID(t *testing.T) {
	l := newGameLocks()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock(7)
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.len(), "released locks are forgotten")
}

func TestGameLocks_IndependentIDs(t *testing.T) {
	l := newGameLocks()
	unlockA := l.lock(1)
	unlockB := l.lock(2)
	assert.Equal(t, 2, l.len())
	unlockA()
	unlockB()
	assert.Equal(t, 0, l.len())
}
