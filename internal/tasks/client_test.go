package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test-tasks.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test-tasks.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Start client in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	// Stop should complete successfully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test-tasks.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Create and register a test queue
	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	// Start client
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	// Enqueue a task
	ids, err := client.Add(TestTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	// Wait for task to be executed
	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestRecomputeProgressTaskConfig(t *testing.T) {
	task := RecomputeProgressTask{UserHash: "u1", CourseHash: "c1"}
	cfg := task.Config()

	assert.Equal(t, "recompute_course_progress", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Backoff)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestQueueProgressRecompute(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test-tasks.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	done := make(chan RecomputeProgressTask, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task RecomputeProgressTask) error {
		done <- task
		return nil
	})
	client.Register(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	require.NoError(t, client.QueueProgressRecompute("u1", "c1"))

	select {
	case task := <-done:
		assert.Equal(t, "u1", task.UserHash)
		assert.Equal(t, "c1", task.CourseHash)
	case <-time.After(5 * time.Second):
		t.Fatal("recompute task was not executed within timeout")
	}
}

type fakeCounter struct {
	total     int64
	completed int64
	err       error
	calls     int
}

func (f *fakeCounter) CompletionCounts(_ context.Context, _, _ string) (int64, int64, error) {
	f.calls++
	return f.total, f.completed, f.err
}

type fakeWriter struct {
	percentage float64
	err        error
	calls      int
}

func (f *fakeWriter) SetProgressPercentage(_ context.Context, _, _ string, percentage float64) error {
	f.calls++
	f.percentage = percentage
	return f.err
}

func TestRecomputeProgressProcessor(t *testing.T) {
	t.Run("computes percentage from counts", func(t *testing.T) {
		counter := &fakeCounter{total: 4, completed: 3}
		writer := &fakeWriter{}

		process := RecomputeProgressProcessor(counter, writer)
		err := process(context.Background(), RecomputeProgressTask{UserHash: "u1", CourseHash: "c1"})
		require.NoError(t, err)

		assert.Equal(t, 1, writer.calls)
		assert.InDelta(t, 75.0, writer.percentage, 0.001)
	})

	t.Run("empty course leaves progress untouched", func(t *testing.T) {
		counter := &fakeCounter{total: 0, completed: 0}
		writer := &fakeWriter{}

		process := RecomputeProgressProcessor(counter, writer)
		err := process(context.Background(), RecomputeProgressTask{UserHash: "u1", CourseHash: "c1"})
		require.NoError(t, err)

		assert.Equal(t, 0, writer.calls)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
