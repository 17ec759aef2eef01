package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bamboo/internal/entities"
	"github.com/mrlokans/bamboo/internal/tasks"
)

// ActiveEnrollmentLister returns all enrollments whose cached progress may
// drift: enrolled, in-progress and paused ones.
type ActiveEnrollmentLister interface {
	ListActive(ctx context.Context) ([]entities.Enrollment, error)
}

// ProgressRollupScheduler periodically sweeps active enrollments and
// enqueues a progress recomputation task per enrollment. The stored
// percentage is a cache; course edits invalidate it silently, so the sweep
// heals it on a schedule.
type ProgressRollupScheduler struct {
	enrollments ActiveEnrollmentLister
	taskClient  *tasks.Client
	schedule    string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewProgressRollupScheduler creates a new scheduler instance. The schedule
// uses standard five-field cron syntax.
func NewProgressRollupScheduler(enrollments ActiveEnrollmentLister, taskClient *tasks.Client, schedule string) *ProgressRollupScheduler {
	return &ProgressRollupScheduler{
		enrollments: enrollments,
		taskClient:  taskClient,
		schedule:    schedule,
		cron:        cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *ProgressRollupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule progress rollup '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Progress rollup scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *ProgressRollupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cancelFunc = nil
	s.mu.Unlock()

	// Stop accepting new jobs and wait for running jobs to complete.
	// The lock is released first: a running sweep's cleanup takes it,
	// so waiting while holding it would never finish.
	ctx := s.cron.Stop()
	<-ctx.Done()

	log.Printf("Progress rollup scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *ProgressRollupScheduler) RunNow() error {
	go s.runSweep()
	return nil
}

// IsRunning returns whether the scheduler is active.
func (s *ProgressRollupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *ProgressRollupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep enqueues one recomputation task per active enrollment.
func (s *ProgressRollupScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Progress rollup: skipped (already sweeping)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	active, err := s.enrollments.ListActive(ctx)
	if err != nil {
		log.Printf("Progress rollup: failed to list enrollments: %v", err)
		return
	}
	if len(active) == 0 {
		log.Printf("Progress rollup: no active enrollments")
		return
	}

	queued := 0
	for _, enrollment := range active {
		task := tasks.RecomputeProgressTask{
			UserHash:   enrollment.UserHash,
			CourseHash: enrollment.CourseHash,
		}
		if _, err := s.taskClient.Add(task).Save(); err != nil {
			log.Printf("Progress rollup: failed to enqueue %s/%s: %v",
				enrollment.UserHash, enrollment.CourseHash, err)
			continue
		}
		queued++
	}

	log.Printf("Progress rollup: queued %d/%d recomputations in %v",
		queued, len(active), time.Since(startTime).Round(time.Millisecond))
}
