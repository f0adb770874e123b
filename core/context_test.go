package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := withFresh(WithSuppressHeader(context.Background()), true)

	const numGoroutines = 50
	done := make(chan bool, numGoroutines)
	for i := range numGoroutines {
		go func(id int) {
			defer func() { done <- true }()
			assert.True(t, shouldSuppressHeader(ctx), "Goroutine %d: shouldSuppressHeader should be true", id)
			assert.True(t, shouldCollectFresh(ctx), "Goroutine %d: shouldCollectFresh should be true", id)
		}(i)
	}
	for range numGoroutines {
		<-done
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	assert.False(t, shouldCollectFresh(ctx))
	assert.False(t, shouldCollectFresh(withFresh(ctx, false)))
}

func TestContextWrongValueType(t *testing.T) {
	ctx := context.WithValue(context.Background(), suppressHeaderKey, "yes")
	assert.False(t, shouldSuppressHeader(ctx))
}
