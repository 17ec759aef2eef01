package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bamboo/internal/entities"
	"github.com/mrlokans/bamboo/internal/tasks"
)

type fakeLister struct {
	enrollments []entities.Enrollment
	calls       int
}

func (f *fakeLister) ListActive(_ context.Context) ([]entities.Enrollment, error) {
	f.calls++
	return f.enrollments, nil
}

func newTestTaskClient(t *testing.T) *tasks.Client {
	t.Helper()
	cfg := tasks.DefaultConfig()
	cfg.Workers = 1

	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "tasks.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestProgressRollupScheduler_StartStop(t *testing.T) {
	scheduler := NewProgressRollupScheduler(&fakeLister{}, newTestTaskClient(t), "0 * * * *")

	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, scheduler.IsRunning())
	assert.NotNil(t, scheduler.GetNextRunTime())

	// Starting twice is a no-op
	require.NoError(t, scheduler.Start(context.Background()))

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
	assert.Nil(t, scheduler.GetNextRunTime())
}

func TestProgressRollupScheduler_RejectsBadSchedule(t *testing.T) {
	scheduler := NewProgressRollupScheduler(&fakeLister{}, newTestTaskClient(t), "not a schedule")

	err := scheduler.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, scheduler.IsRunning())
}

type blockingLister struct {
	started chan struct{}
	release chan struct{}
}

func (f *blockingLister) ListActive(_ context.Context) ([]entities.Enrollment, error) {
	close(f.started)
	<-f.release
	return nil, nil
}

func TestProgressRollupScheduler_StopDuringSweep(t *testing.T) {
	lister := &blockingLister{started: make(chan struct{}), release: make(chan struct{})}
	scheduler := NewProgressRollupScheduler(lister, newTestTaskClient(t), "0 * * * *")
	require.NoError(t, scheduler.Start(context.Background()))

	// Hold a sweep mid-flight, then stop. The sweep's deferred cleanup
	// needs the scheduler mutex; Stop must not sit on it while waiting.
	require.NoError(t, scheduler.RunNow())
	<-lister.started

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an in-flight sweep")
	}
	assert.False(t, scheduler.IsRunning())
	close(lister.release)
}

func TestProgressRollupScheduler_SweepQueuesTasks(t *testing.T) {
	lister := &fakeLister{enrollments: []entities.Enrollment{
		{UserHash: "u1", CourseHash: "c1", Status: entities.CourseInProgress},
		{UserHash: "u2", CourseHash: "c1", Status: entities.CourseEnrolled},
	}}
	client := newTestTaskClient(t)

	scheduler := NewProgressRollupScheduler(lister, client, "0 * * * *")
	require.NoError(t, scheduler.RunNow())

	// RunNow sweeps in the background
	deadline := time.After(2 * time.Second)
	for lister.calls == 0 {
		select {
		case <-deadline:
			t.Fatal("sweep did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
