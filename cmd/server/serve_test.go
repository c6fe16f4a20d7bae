package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartJobStopWaitsForReturn(t *testing.T) {
	var finished atomic.Bool
	stop := startJob(context.Background(), func(ctx context.Context) {
		<-ctx.Done()
		// work still running after cancellation, like a flush in progress
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})

	stop()
	assert.True(t, finished.Load(), "stop returned before the job did")
}

func TestStartJobFollowsParentContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	stop := startJob(parent, func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})
	defer stop()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job ignored parent cancellation")
	}
}
