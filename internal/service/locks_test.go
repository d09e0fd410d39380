package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserLocks(t *testing.T) {
	t.Run("serializes work per user", func(t *testing.T) {
		locks := newUserLocks()

		var counter int
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release := locks.Acquire("user-1")
				defer release()
				counter++
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, counter)
	})

	t.Run("releases entries once unused", func(t *testing.T) {
		locks := newUserLocks()

		release := locks.Acquire("user-1")
		release()

		locks.mu.Lock()
		defer locks.mu.Unlock()
		assert.Empty(t, locks.locks)
	})

	t.Run("different users do not block each other", func(t *testing.T) {
		locks := newUserLocks()

		releaseA := locks.Acquire("user-a")
		defer releaseA()

		done := make(chan struct{})
		go func() {
			releaseB := locks.Acquire("user-b")
			releaseB()
			close(done)
		}()

		<-done
	})
}
