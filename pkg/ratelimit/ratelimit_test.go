package ratelimit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBurst(t *testing.T) {
	assert.Equal(t, 1, Burst(0))
	assert.Equal(t, 1, Burst(23))
	assert.Equal(t, 416, Burst(10000))
}

func TestAllow_ExhaustsBurst(t *testing.T) {
	l := New()
	for i := 0; i < 2; i++ {
		assert.True(t, l.Allow(1, 48), "request %d", i)
	}
	assert.False(t, l.Allow(1, 48))

	assert.True(t, l.Allow(2, 48), "keys are independent")
}

func TestAllow_LimitChangeResetsBucket(t *testing.T) {
	l := New()
	assert.True(t, l.Allow(1, 24))
	assert.False(t, l.Allow(1, 24))
	assert.True(t, l.Allow(1, 48))
}

func TestAllow_NonPositive(t *testing.T) {
	assert.False(t, New().Allow(1, 0))
	assert.False(t, New().Allow(1, -5))
}

func TestForget(t *testing.T) {
	l := New()
	assert.True(t, l.Allow(1, 24))
	assert.False(t, l.Allow(1, 24))
	l.Forget(1)
	assert.True(t, l.Allow(1, 24))
}

func TestAllow_Concurrent(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(7, 240) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}
