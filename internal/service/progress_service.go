package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
)

type progressRepo interface {
	FindByPair(ctx context.Context, studentID, learningExperienceID string) (*models.StudentProgress, error)
	Upsert(ctx context.Context, progress *models.StudentProgress) error
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentProgress, error)
	ListByLearningExperience(ctx context.Context, learningExperienceID string) ([]models.StudentProgress, error)
}

type evidencePairReader interface {
	ListByStudentAndLE(ctx context.Context, studentID, learningExperienceID string) ([]models.Evidence, error)
}

type criteriaCatalogReader interface {
	FindByID(ctx context.Context, id string) (*models.LearningExperience, error)
}

// ProgressService aggregates evidence into per-(student, learning experience)
// progress records. Recomputation always reads the full evidence set; there is
// no incremental path.
type ProgressService struct {
	progress progressRepo
	evidence evidencePairReader
	catalog  criteriaCatalogReader
	cache    *CacheService
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProgressService constructs ProgressService.
func NewProgressService(progress progressRepo, evidence evidencePairReader, catalog criteriaCatalogReader, cache *CacheService, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{
		progress: progress,
		evidence: evidence,
		catalog:  catalog,
		cache:    cache,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// pairLock returns the mutex serializing recomputation for one pair.
// Distinct pairs recompute independently. Entries are never evicted, so
// the map holds one mutex per pair seen since startup; a class roster
// stays in the low thousands of pairs, each a few dozen bytes.
func (s *ProgressService) pairLock(studentID, learningExperienceID string) *sync.Mutex {
	key := studentID + "|" + learningExperienceID
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// Recompute derives the progress record for a pair from its full evidence
// history and persists it.
//
// Policy notes the rest of the system depends on:
//   - mastery_level is the maximum across all evidence, a best-ever ceiling.
//   - criteria status is recomputed from the current evidence set, so deleting
//     the only record demonstrating a criterion flips it back to not_met.
//   - trend compares the three most recent observations against everything
//     older; with three or fewer records the prior trend is kept.
//   - with zero evidence the record is committed unchanged rather than reset.
//   - a failed learning-experience lookup skips the criteria update only;
//     mastery, count, date and trend still update.
func (s *ProgressService) Recompute(ctx context.Context, studentID, learningExperienceID string) (*models.StudentProgress, error) {
	lock := s.pairLock(studentID, learningExperienceID)
	lock.Lock()
	defer lock.Unlock()

	progress, err := s.progress.FindByPair(ctx, studentID, learningExperienceID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress record")
		}
		progress = &models.StudentProgress{
			StudentID:            studentID,
			LearningExperienceID: learningExperienceID,
			MasteryLevel:         models.MasteryDeveloping,
			EvidenceCount:        0,
			Trend:                models.TrendStable,
		}
		if err := progress.SetCriteriaStatus(map[string]string{}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise progress record")
		}
	}

	evidenceList, err := s.evidence.ListByStudentAndLE(ctx, studentID, learningExperienceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evidence")
	}

	if len(evidenceList) == 0 {
		if err := s.progress.Upsert(ctx, progress); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist progress record")
		}
		s.invalidateClassCache(ctx, learningExperienceID)
		return progress, nil
	}

	highest := evidenceList[0].MasteryLevel
	for _, e := range evidenceList[1:] {
		if e.MasteryLevel > highest {
			highest = e.MasteryLevel
		}
	}
	progress.MasteryLevel = highest
	progress.EvidenceCount = len(evidenceList)
	latest := evidenceList[0].ObservationDate
	progress.LastEvidenceDate = &latest

	le, err := s.catalog.FindByID(ctx, learningExperienceID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("learning experience lookup failed during recompute",
				zap.String("learning_experience_id", learningExperienceID), zap.Error(err))
		}
	} else {
		criteria := le.SuccessCriteriaList()
		status := make(map[string]string, len(criteria))
		for i := range criteria {
			criterionID := strconv.Itoa(i)
			status[criterionID] = models.CriterionNotMet
			for _, e := range evidenceList {
				if e.Demonstrates(criterionID) {
					status[criterionID] = models.CriterionMet
					break
				}
			}
		}
		if err := progress.SetCriteriaStatus(status); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode criteria status")
		}
	}

	if len(evidenceList) >= 2 {
		recent := evidenceList
		var older []models.Evidence
		if len(evidenceList) > 3 {
			recent = evidenceList[:3]
			older = evidenceList[3:]
		}
		if len(older) > 0 {
			recentAvg := meanMastery(recent)
			olderAvg := meanMastery(older)
			switch {
			case recentAvg > olderAvg:
				progress.Trend = models.TrendImproving
			case recentAvg < olderAvg:
				progress.Trend = models.TrendDeclining
			default:
				progress.Trend = models.TrendStable
			}
		}
	}

	if err := s.progress.Upsert(ctx, progress); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist progress record")
	}

	s.invalidateClassCache(ctx, learningExperienceID)
	return progress, nil
}

func meanMastery(evidence []models.Evidence) float64 {
	if len(evidence) == 0 {
		return 0
	}
	sum := 0
	for _, e := range evidence {
		sum += e.MasteryLevel
	}
	return float64(sum) / float64(len(evidence))
}

// Get returns the stored record for a pair.
func (s *ProgressService) Get(ctx context.Context, studentID, learningExperienceID string) (*models.StudentProgress, error) {
	progress, err := s.progress.FindByPair(ctx, studentID, learningExperienceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "progress not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress record")
	}
	return progress, nil
}

// ListByStudent returns all progress records for a student.
func (s *ProgressService) ListByStudent(ctx context.Context, studentID string) ([]models.StudentProgress, error) {
	list, err := s.progress.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student progress")
	}
	return list, nil
}

// ListByLearningExperience returns the class roster of progress records,
// served through the cache when enabled.
func (s *ProgressService) ListByLearningExperience(ctx context.Context, learningExperienceID string) ([]models.StudentProgress, error) {
	cacheKey := classProgressCacheKey(learningExperienceID)
	if s.cache.Enabled() {
		var cached []models.StudentProgress
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("class progress cache read failed", zap.Error(err))
		}
		if hit {
			return cached, nil
		}
	}

	list, err := s.progress.ListByLearningExperience(ctx, learningExperienceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class progress")
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, list); err != nil {
			s.logger.Warn("class progress cache write failed", zap.Error(err))
		}
	}
	return list, nil
}

func (s *ProgressService) invalidateClassCache(ctx context.Context, learningExperienceID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, classProgressCacheKey(learningExperienceID)); err != nil {
		s.logger.Warn("class progress cache invalidation failed",
			zap.String("learning_experience_id", learningExperienceID), zap.Error(err))
	}
}

func classProgressCacheKey(learningExperienceID string) string {
	return fmt.Sprintf("progress:class:%s", learningExperienceID)
}
