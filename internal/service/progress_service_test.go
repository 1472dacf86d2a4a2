package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
)

type mockProgressRepo struct {
	mu       sync.Mutex
	records  map[string]models.StudentProgress
	upserted int
}

func pairKey(studentID, leID string) string {
	return studentID + "|" + leID
}

func (m *mockProgressRepo) FindByPair(ctx context.Context, studentID, leID string) (*models.StudentProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.records[pairKey(studentID, leID)]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgressRepo) Upsert(ctx context.Context, progress *models.StudentProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]models.StudentProgress)
	}
	m.records[pairKey(progress.StudentID, progress.LearningExperienceID)] = *progress
	m.upserted++
	return nil
}

func (m *mockProgressRepo) ListByStudent(ctx context.Context, studentID string) ([]models.StudentProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.StudentProgress
	for _, p := range m.records {
		if p.StudentID == studentID {
			list = append(list, p)
		}
	}
	return list, nil
}

func (m *mockProgressRepo) ListByLearningExperience(ctx context.Context, leID string) ([]models.StudentProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.StudentProgress
	for _, p := range m.records {
		if p.LearningExperienceID == leID {
			list = append(list, p)
		}
	}
	return list, nil
}

type mockEvidencePairReader struct {
	mu    sync.Mutex
	lists map[string][]models.Evidence
}

func (m *mockEvidencePairReader) ListByStudentAndLE(ctx context.Context, studentID, leID string) ([]models.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists[pairKey(studentID, leID)], nil
}

type mockCriteriaCatalog struct {
	experiences map[string]*models.LearningExperience
}

func (m *mockCriteriaCatalog) FindByID(ctx context.Context, id string) (*models.LearningExperience, error) {
	if le, ok := m.experiences[id]; ok {
		return le, nil
	}
	return nil, sql.ErrNoRows
}

func experienceWithCriteria(id string, criteria ...string) *models.LearningExperience {
	le := &models.LearningExperience{ID: id, CoreConcept: "Fractions", LearningIntention: "Understand fractions"}
	if err := le.SetSuccessCriteriaList(criteria); err != nil {
		panic(err)
	}
	return le
}

// newestFirst builds an evidence list ordered newest observation first, the
// ordering the repository guarantees. Mastery levels are given newest first.
func newestFirst(studentID, leID string, levels []int, criteriaIDs ...[]string) []models.Evidence {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	list := make([]models.Evidence, len(levels))
	for i, level := range levels {
		e := models.Evidence{
			StudentID:            studentID,
			LearningExperienceID: leID,
			ObservationDate:      base.Add(-time.Duration(i) * 24 * time.Hour),
			MasteryLevel:         level,
		}
		ids := []string{}
		if i < len(criteriaIDs) {
			ids = criteriaIDs[i]
		}
		if err := e.SetCriteriaIDs(ids); err != nil {
			panic(err)
		}
		list[i] = e
	}
	return list
}

func newProgressFixture(evidence *mockEvidencePairReader, catalog *mockCriteriaCatalog) (*ProgressService, *mockProgressRepo) {
	repo := &mockProgressRepo{}
	if evidence == nil {
		evidence = &mockEvidencePairReader{}
	}
	if catalog == nil {
		catalog = &mockCriteriaCatalog{}
	}
	return NewProgressService(repo, evidence, catalog, nil, zap.NewNop()), repo
}

func TestRecomputeMasteryIsHighestEver(t *testing.T) {
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "le1"): newestFirst("s1", "le1", []int{2, 4, 3}),
	}}
	svc, _ := newProgressFixture(evidence, nil)

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, 4, progress.MasteryLevel)
	assert.Equal(t, 3, progress.EvidenceCount)
	require.NotNil(t, progress.LastEvidenceDate)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), *progress.LastEvidenceDate)
}

func TestRecomputeMasteryNeverDecreasesBelowStored(t *testing.T) {
	// The stored level only changes when the evidence maximum differs; a
	// later low observation cannot pull the ceiling down below the
	// highest observation still on record.
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "le1"): newestFirst("s1", "le1", []int{1, 4}),
	}}
	svc, _ := newProgressFixture(evidence, nil)

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, 4, progress.MasteryLevel)
}

func TestRecomputeCriteriaStatus(t *testing.T) {
	catalog := &mockCriteriaCatalog{experiences: map[string]*models.LearningExperience{
		"le1": experienceWithCriteria("le1", "identify halves", "compare fractions", "order fractions"),
	}}
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "le1"): newestFirst("s1", "le1", []int{3, 2}, []string{"0"}, []string{"2"}),
	}}
	svc, _ := newProgressFixture(evidence, catalog)

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)

	status := progress.CriteriaStatus()
	assert.Equal(t, models.CriterionMet, status["0"])
	assert.Equal(t, models.CriterionNotMet, status["1"])
	assert.Equal(t, models.CriterionMet, status["2"])
}

func TestRecomputeCriterionFlipsBackWhenEvidenceRemoved(t *testing.T) {
	catalog := &mockCriteriaCatalog{experiences: map[string]*models.LearningExperience{
		"le1": experienceWithCriteria("le1", "identify halves"),
	}}
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "le1"): newestFirst("s1", "le1", []int{3}, []string{"0"}),
	}}
	svc, _ := newProgressFixture(evidence, catalog)

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.CriterionMet, progress.CriteriaStatus()["0"])

	// The only demonstrating observation is deleted; recompute reads the
	// remaining set and the criterion reverts.
	evidence.mu.Lock()
	evidence.lists[pairKey("s1", "le1")] = newestFirst("s1", "le1", []int{2}, []string{})
	evidence.mu.Unlock()

	progress, err = svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.CriterionNotMet, progress.CriteriaStatus()["0"])
}

func TestRecomputeTrendNeedsMoreThanThreeObservations(t *testing.T) {
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "le1"): newestFirst("s1", "le1", []int{4, 3, 2}),
	}}
	svc, repo := newProgressFixture(evidence, nil)

	// Seed a prior record carrying an improving trend.
	seeded := models.StudentProgress{
		StudentID:            "s1",
		LearningExperienceID: "le1",
		MasteryLevel:         3,
		Trend:                models.TrendImproving,
	}
	require.NoError(t, seeded.SetCriteriaStatus(map[string]string{}))
	require.NoError(t, repo.Upsert(context.Background(), &seeded))

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.TrendImproving, progress.Trend)
}

func TestRecomputeTrendImproving(t *testing.T) {
	// Newest three observations average 4, the older two average 2.
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "le1"): newestFirst("s1", "le1", []int{4, 4, 4, 2, 2}),
	}}
	svc, _ := newProgressFixture(evidence, nil)

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.TrendImproving, progress.Trend)
}

func TestRecomputeTrendDeclining(t *testing.T) {
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "le1"): newestFirst("s1", "le1", []int{2, 2, 2, 4, 4}),
	}}
	svc, _ := newProgressFixture(evidence, nil)

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.TrendDeclining, progress.Trend)
}

func TestRecomputeTrendStableWhenAveragesMatch(t *testing.T) {
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "le1"): newestFirst("s1", "le1", []int{3, 3, 3, 3, 3}),
	}}
	svc, _ := newProgressFixture(evidence, nil)

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.TrendStable, progress.Trend)
}

func TestRecomputeEmptyEvidenceKeepsStoredRecord(t *testing.T) {
	svc, repo := newProgressFixture(nil, nil)

	stale := models.StudentProgress{
		StudentID:            "s1",
		LearningExperienceID: "le1",
		MasteryLevel:         3,
		EvidenceCount:        5,
		Trend:                models.TrendImproving,
	}
	require.NoError(t, stale.SetCriteriaStatus(map[string]string{"0": models.CriterionMet}))
	require.NoError(t, repo.Upsert(context.Background(), &stale))
	repo.upserted = 0

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, 3, progress.MasteryLevel)
	assert.Equal(t, 5, progress.EvidenceCount)
	assert.Equal(t, models.TrendImproving, progress.Trend)
	assert.Equal(t, 1, repo.upserted)
}

func TestRecomputeCreatesDefaultRecord(t *testing.T) {
	svc, _ := newProgressFixture(nil, nil)

	progress, err := svc.Recompute(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.MasteryDeveloping, progress.MasteryLevel)
	assert.Equal(t, 0, progress.EvidenceCount)
	assert.Equal(t, models.TrendStable, progress.Trend)
	assert.Nil(t, progress.LastEvidenceDate)
	assert.Empty(t, progress.CriteriaStatus())
}

func TestRecomputeSkipsCriteriaWhenExperienceMissing(t *testing.T) {
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{
		pairKey("s1", "missing"): newestFirst("s1", "missing", []int{4, 2}, []string{"0"}),
	}}
	svc, _ := newProgressFixture(evidence, &mockCriteriaCatalog{})

	progress, err := svc.Recompute(context.Background(), "s1", "missing")
	require.NoError(t, err)
	assert.Equal(t, 4, progress.MasteryLevel)
	assert.Equal(t, 2, progress.EvidenceCount)
	assert.Empty(t, progress.CriteriaStatus())
}

func TestRecomputeConcurrentPairsStayIsolated(t *testing.T) {
	evidence := &mockEvidencePairReader{lists: map[string][]models.Evidence{}}
	for _, pair := range []struct {
		student string
		levels  []int
	}{
		{"s1", []int{4, 4, 4, 2, 2}},
		{"s2", []int{2, 2, 2, 4, 4}},
		{"s3", []int{3}},
	} {
		evidence.lists[pairKey(pair.student, "le1")] = newestFirst(pair.student, "le1", pair.levels)
	}
	svc, repo := newProgressFixture(evidence, nil)

	var wg sync.WaitGroup
	for _, student := range []string{"s1", "s2", "s3"} {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := svc.Recompute(context.Background(), id, "le1")
				assert.NoError(t, err)
			}(student)
		}
	}
	wg.Wait()

	s1, err := repo.FindByPair(context.Background(), "s1", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.TrendImproving, s1.Trend)

	s2, err := repo.FindByPair(context.Background(), "s2", "le1")
	require.NoError(t, err)
	assert.Equal(t, models.TrendDeclining, s2.Trend)

	s3, err := repo.FindByPair(context.Background(), "s3", "le1")
	require.NoError(t, err)
	assert.Equal(t, 3, s3.MasteryLevel)
	assert.Equal(t, 1, s3.EvidenceCount)
}

func TestProgressGetNotFound(t *testing.T) {
	svc, _ := newProgressFixture(nil, nil)

	_, err := svc.Get(context.Background(), "s1", "le1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
