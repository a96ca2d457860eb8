package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubJob struct {
	runs  atomic.Int32
	block chan struct{}
}

func (s *stubJob) Name() string { return "stub" }

func (s *stubJob) Run(ctx context.Context) error {
	s.runs.Add(1)
	if s.block != nil {
		<-s.block
	}
	return nil
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := New()
	require.Error(t, s.Schedule("not a spec", &stubJob{}))
	require.NoError(t, s.Schedule("*/5 * * * *", &stubJob{}))
}

func TestSchedulerWrap_SkipsOverlappingRuns(t *testing.T) {
	s := New()
	job := &stubJob{block: make(chan struct{})}
	fn := s.wrap(job)

	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	require.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// The first run is still blocked, so this tick must be dropped.
	fn()
	require.Equal(t, int32(1), job.runs.Load())

	close(job.block)
	<-done
	fn()
	require.Equal(t, int32(2), job.runs.Load())
}
