package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOnceSkipsOverlappingRounds(t *testing.T) {
	var rounds int32
	release := make(chan struct{})

	job := &BaseJob{
		Name: "test",
		OnWork: func(ctx context.Context) error {
			atomic.AddInt32(&rounds, 1)
			<-release
			return nil
		},
	}

	done := make(chan error)
	go func() { done <- job.RunOnce(context.Background()) }()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&rounds) == 1 }, time.Second, time.Millisecond)
	assert.Nil(t, job.RunOnce(context.Background()))

	close(release)
	assert.Nil(t, <-done)
	assert.EqualValues(t, 1, atomic.LoadInt32(&rounds))
}

func TestRunOnceReturnsError(t *testing.T) {
	failed := errors.New("boom")
	job := &BaseJob{OnWork: func(ctx context.Context) error { return failed }}

	assert.Equal(t, failed, job.RunOnce(context.Background()))
	assert.Equal(t, failed, job.RunOnce(context.Background()))
}

func TestRunStopsWithContext(t *testing.T) {
	job := &BaseJob{
		Name:   "test",
		Spec:   "@every 1h",
		OnWork: func(ctx context.Context) error { return nil },
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, job.Run(ctx))

	assert.NotNil(t, (&BaseJob{Spec: "not a spec"}).Run(context.Background()))
}
