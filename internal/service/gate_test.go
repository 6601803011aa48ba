package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmissionGateSerializesCriticalSections(t *testing.T) {
	gate := NewAdmissionGate()

	const workers = 50
	var inside, maxInside int
	var check sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release := gate.Acquire()
			defer release()

			check.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			check.Unlock()

			check.Lock()
			inside--
			check.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
}
