package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublisherStats_ConcurrentRecording(t *testing.T) {
	p := NewInsurancePublisher(nil)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.recordSuccess()
		}()
		go func() {
			defer wg.Done()
			p.recordFailure()
		}()
	}
	wg.Wait()

	published, failed, lastPublish := p.Stats()
	assert.Equal(t, int64(100), published)
	assert.Equal(t, int64(100), failed)
	assert.False(t, lastPublish.IsZero())
}
