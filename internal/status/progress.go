package status

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// ResultStore appends immutable progress snapshots. Rows are never
// updated or deleted once written.
type ResultStore interface {
	Create(ctx context.Context, result *entities.LessonResult) error
}

// RecordProgress records a progress report for the (userHash, lessonHash)
// lesson. It appends a full snapshot of the log fragment to the history
// store under a fresh hash, shallow-merges a short summary into the
// lesson's learning log, and moves the lesson to completed when the
// reported progress hits 100, in_progress otherwise. A 100 report on a
// lesson that was never started counts as starting and completing it in
// one step. Snapshots survive even when concurrent reports race on the
// summary.
func (m *LessonManager) RecordProgress(ctx context.Context, userHash, lessonHash string, progress float64, fragment map[string]interface{}) (*entities.LessonProgress, error) {
	if progress < 0.0 || progress > 100.0 {
		return nil, &InvalidArgumentError{Field: "progress", Reason: "must be between 0.0 and 100.0"}
	}
	if fragment == nil {
		fragment = map[string]interface{}{}
	}

	current, err := m.progress.Get(ctx, userHash, lessonHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, dependency("load lesson progress", err)
	}

	target := entities.LessonInProgress
	if progress == 100.0 {
		target = entities.LessonCompleted
	}
	oneShot := target == entities.LessonCompleted && current.Status == entities.LessonNotStarted
	// Re-reporting the current status is fine, and a full report skips
	// straight past in_progress; everything else goes through the
	// transition table.
	if current.Status != target && !oneShot && !LessonTransitionAllowed(current.Status, target) {
		return nil, &InvalidTransitionError{
			Entity:    "lesson",
			Current:   string(current.Status),
			Requested: string(target),
		}
	}

	now := time.Now().UTC()
	resultHash := uuid.NewString()

	score := 0.0
	if raw, ok := fragment["score"]; ok {
		if v, ok := raw.(float64); ok {
			score = v
		}
	}

	result := &entities.LessonResult{
		Hash:        resultHash,
		UserHash:    userHash,
		LessonHash:  lessonHash,
		LearningLog: fragment,
		Score:       score,
	}
	if err := m.results.Create(ctx, result); err != nil {
		return nil, dependency("append lesson result", err)
	}

	summary := map[string]interface{}{
		"last_progress": progress,
		"last_update":   now.Format(time.RFC3339),
		"result_hash":   resultHash,
	}

	updated, err := m.progress.RecordProgress(ctx, userHash, lessonHash, progress, target, summary, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, dependency("update lesson progress", err)
	}

	if current.Status != target {
		var cascadeErr error
		switch target {
		case entities.LessonInProgress:
			cascadeErr = m.promoteCourse(ctx, userHash, lessonHash)
		case entities.LessonCompleted:
			if oneShot {
				cascadeErr = m.promoteCourse(ctx, userHash, lessonHash)
			}
			if cascadeErr == nil {
				cascadeErr = m.maybeCompleteCourse(ctx, userHash, lessonHash)
			}
		}
		if cascadeErr != nil {
			return nil, cascadeErr
		}
		m.queueRecompute(ctx, userHash, lessonHash)
	}
	return updated, nil
}
