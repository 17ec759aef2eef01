package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"gorm.io/gorm"
)

// ProgressCounter reports how many visible published lessons a course has
// and how many of them the user has completed.
type ProgressCounter interface {
	CompletionCounts(ctx context.Context, userHash, courseHash string) (total, completed int64, err error)
}

// ProgressWriter persists the recomputed percentage on the enrollment.
type ProgressWriter interface {
	SetProgressPercentage(ctx context.Context, userHash, courseHash string, percentage float64) error
}

// RecomputeProgressTask recalculates one enrollment's progress percentage
// from the current lesson records. Course edits (lessons attached, hidden
// or unpublished) make the stored percentage stale; the recomputation
// always works from live counts.
type RecomputeProgressTask struct {
	UserHash   string `json:"user_hash"`
	CourseHash string `json:"course_hash"`
}

// Config returns the queue configuration for progress recomputation.
func (t RecomputeProgressTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "recompute_course_progress",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RecomputeProgressProcessor creates a processor function for
// RecomputeProgressTask.
func RecomputeProgressProcessor(counter ProgressCounter, writer ProgressWriter) backlite.QueueProcessor[RecomputeProgressTask] {
	return func(ctx context.Context, task RecomputeProgressTask) error {
		total, completed, err := counter.CompletionCounts(ctx, task.UserHash, task.CourseHash)
		if err != nil {
			return fmt.Errorf("count lessons for %s/%s: %w", task.UserHash, task.CourseHash, err)
		}
		if total == 0 {
			// Empty courses stay at zero rather than dividing by it.
			return nil
		}

		percentage := float64(completed) / float64(total) * 100.0
		if err := writer.SetProgressPercentage(ctx, task.UserHash, task.CourseHash, percentage); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Enrollment deleted between enqueue and run; nothing to update.
				return nil
			}
			return fmt.Errorf("store progress for %s/%s: %w", task.UserHash, task.CourseHash, err)
		}

		log.Printf("[TASK] Recomputed progress for user %s course %s: %d/%d lessons (%.1f%%)",
			task.UserHash, task.CourseHash, completed, total, percentage)
		return nil
	}
}

// NewRecomputeProgressQueue creates a backlite queue for progress
// recomputation tasks.
func NewRecomputeProgressQueue(counter ProgressCounter, writer ProgressWriter) backlite.Queue {
	return backlite.NewQueue(RecomputeProgressProcessor(counter, writer))
}

// QueueProgressRecompute enqueues a single recomputation for the given
// enrollment. Used by the status core after lesson status changes so the
// cached percentage does not wait for the next rollup sweep.
func (c *Client) QueueProgressRecompute(userHash, courseHash string) error {
	_, err := c.Add(RecomputeProgressTask{UserHash: userHash, CourseHash: courseHash}).Save()
	return err
}
