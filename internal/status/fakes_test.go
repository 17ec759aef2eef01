package status

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bamboo/internal/entities"
)

// In-memory collaborators so both machines can be exercised without a
// database. Keys are "user|course" and "user|lesson" pairs.

type fakeEnrollmentStore struct {
	records map[string]*entities.Enrollment
	failing bool
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{records: map[string]*entities.Enrollment{}}
}

func (s *fakeEnrollmentStore) add(userHash, courseHash string, status entities.CourseStatus) {
	now := time.Now().UTC()
	s.records[userHash+"|"+courseHash] = &entities.Enrollment{
		UserHash:   userHash,
		CourseHash: courseHash,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *fakeEnrollmentStore) Get(_ context.Context, userHash, courseHash string) (*entities.Enrollment, error) {
	if s.failing {
		return nil, errors.New("enrollment store down")
	}
	e, ok := s.records[userHash+"|"+courseHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *fakeEnrollmentStore) SetStatus(_ context.Context, userHash, courseHash string, target entities.CourseStatus, now time.Time, completion *time.Time) (*entities.Enrollment, error) {
	if s.failing {
		return nil, errors.New("enrollment store down")
	}
	e, ok := s.records[userHash+"|"+courseHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	e.Status = target
	e.UpdatedAt = now
	if completion != nil {
		e.CompletionDate = completion
		e.ProgressPercentage = 100.0
	}
	clone := *e
	return &clone, nil
}

type fakeMemberships struct {
	// memberships per course, unordered; published marks lesson hashes
	// counted towards course completion.
	lessons   map[string][]entities.CourseLesson
	published map[string]bool
	progress  *fakeProgressStore
	failing   bool
}

func newFakeMemberships(progress *fakeProgressStore) *fakeMemberships {
	return &fakeMemberships{
		lessons:   map[string][]entities.CourseLesson{},
		published: map[string]bool{},
		progress:  progress,
	}
}

func (s *fakeMemberships) addLesson(courseHash, lessonHash string, orderIndex int, published bool) {
	s.lessons[courseHash] = append(s.lessons[courseHash], entities.CourseLesson{
		CourseHash: courseHash,
		LessonHash: lessonHash,
		OrderIndex: orderIndex,
		IsVisible:  true,
	})
	s.published[lessonHash] = published
}

func (s *fakeMemberships) VisibleLessons(_ context.Context, courseHash string) ([]entities.CourseLesson, error) {
	if s.failing {
		return nil, errors.New("membership store down")
	}
	out := append([]entities.CourseLesson(nil), s.lessons[courseHash]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

func (s *fakeMemberships) CourseForLesson(_ context.Context, lessonHash string) (string, error) {
	if s.failing {
		return "", errors.New("membership store down")
	}
	for courseHash, memberships := range s.lessons {
		for _, cl := range memberships {
			if cl.LessonHash == lessonHash {
				return courseHash, nil
			}
		}
	}
	return "", gorm.ErrRecordNotFound
}

func (s *fakeMemberships) CompletionCounts(_ context.Context, userHash, courseHash string) (int64, int64, error) {
	if s.failing {
		return 0, 0, errors.New("membership store down")
	}
	var total, completed int64
	for _, cl := range s.lessons[courseHash] {
		if !s.published[cl.LessonHash] {
			continue
		}
		total++
		record, ok := s.progress.records[userHash+"|"+cl.LessonHash]
		if ok && record.Status == entities.LessonCompleted {
			completed++
		}
	}
	return total, completed, nil
}

type fakeProgressStore struct {
	records     map[string]*entities.LessonProgress
	createCalls int
	failing     bool
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: map[string]*entities.LessonProgress{}}
}

func (s *fakeProgressStore) add(userHash, lessonHash string, status entities.LessonStatus) {
	now := time.Now().UTC()
	s.records[userHash+"|"+lessonHash] = &entities.LessonProgress{
		UserHash:   userHash,
		LessonHash: lessonHash,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *fakeProgressStore) Get(_ context.Context, userHash, lessonHash string) (*entities.LessonProgress, error) {
	if s.failing {
		return nil, errors.New("progress store down")
	}
	record, ok := s.records[userHash+"|"+lessonHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *fakeProgressStore) SetStatus(_ context.Context, userHash, lessonHash string, target entities.LessonStatus, now time.Time, progress *float64) (*entities.LessonProgress, error) {
	if s.failing {
		return nil, errors.New("progress store down")
	}
	record, ok := s.records[userHash+"|"+lessonHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	record.Status = target
	record.UpdatedAt = now
	record.LastAccessed = &now
	if progress != nil {
		record.Progress = *progress
	}
	clone := *record
	return &clone, nil
}

func (s *fakeProgressStore) RecordProgress(_ context.Context, userHash, lessonHash string, progress float64, target entities.LessonStatus, summary map[string]interface{}, now time.Time) (*entities.LessonProgress, error) {
	if s.failing {
		return nil, errors.New("progress store down")
	}
	record, ok := s.records[userHash+"|"+lessonHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	record.Progress = progress
	record.Status = target
	record.UpdatedAt = now
	record.LastAccessed = &now
	if record.LearningLog == nil {
		record.LearningLog = map[string]interface{}{}
	}
	for k, v := range summary {
		record.LearningLog[k] = v
	}
	clone := *record
	return &clone, nil
}

// CreateMissing skips rows that already exist, mirroring the conflict-skip
// bulk insert of the real repository.
func (s *fakeProgressStore) CreateMissing(_ context.Context, rows []entities.LessonProgress) error {
	if s.failing {
		return errors.New("progress store down")
	}
	s.createCalls++
	for _, row := range rows {
		key := row.UserHash + "|" + row.LessonHash
		if _, exists := s.records[key]; exists {
			continue
		}
		clone := row
		s.records[key] = &clone
	}
	return nil
}

type fakeRecomputeQueuer struct {
	calls   [][2]string
	failing bool
}

func (q *fakeRecomputeQueuer) QueueProgressRecompute(userHash, courseHash string) error {
	if q.failing {
		return errors.New("queue down")
	}
	q.calls = append(q.calls, [2]string{userHash, courseHash})
	return nil
}

type fakeResultStore struct {
	results []*entities.LessonResult
	failing bool
}

func (s *fakeResultStore) Create(_ context.Context, result *entities.LessonResult) error {
	if s.failing {
		return errors.New("result store down")
	}
	clone := *result
	s.results = append(s.results, &clone)
	return nil
}

// testMachines wires both managers over shared fakes.
type testMachines struct {
	enrollments *fakeEnrollmentStore
	memberships *fakeMemberships
	progress    *fakeProgressStore
	results     *fakeResultStore
	courses     *CourseManager
	lessons     *LessonManager
}

func newTestMachines() *testMachines {
	progress := newFakeProgressStore()
	memberships := newFakeMemberships(progress)
	enrollments := newFakeEnrollmentStore()
	results := &fakeResultStore{}

	courses := NewCourseManager(enrollments, memberships, progress)
	lessons := NewLessonManager(progress, memberships, courses, results)

	return &testMachines{
		enrollments: enrollments,
		memberships: memberships,
		progress:    progress,
		results:     results,
		courses:     courses,
		lessons:     lessons,
	}
}
