package trading

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestPublicationLocksSerializeSameID(t *testing.T) {
	locks := newPublicationLocks()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu := locks.lock(id)
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}
