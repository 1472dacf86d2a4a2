package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
	"github.com/planbook-app/planbook-api/pkg/export"
	"github.com/planbook-app/planbook-api/pkg/jobs"
	"github.com/planbook-app/planbook-api/pkg/storage"
)

type worksheetRepository interface {
	Create(ctx context.Context, worksheet *models.Worksheet, questions []models.WorksheetQuestion) error
	FindByID(ctx context.Context, id string) (*models.Worksheet, error)
	ListByLesson(ctx context.Context, lessonID string) ([]models.Worksheet, error)
	FindByLessonAndTier(ctx context.Context, lessonID string, tier models.WorksheetTier) (*models.Worksheet, error)
	ListQuestions(ctx context.Context, worksheetID string) ([]models.WorksheetQuestion, error)
	SetFilePath(ctx context.Context, worksheetID, filePath string) error
	DeleteByLesson(ctx context.Context, lessonID string) error
}

type worksheetLessonReader interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
}

type worksheetCatalogReader interface {
	FindByID(ctx context.Context, id string) (*models.LearningExperience, error)
}

const worksheetPDFJobType = "worksheet_pdf"

// WorksheetService generates tiered worksheets for lessons and renders them
// to PDF in the background worker pool.
type WorksheetService struct {
	repo     worksheetRepository
	lessons  worksheetLessonReader
	catalog  worksheetCatalogReader
	exporter *export.PDFExporter
	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewWorksheetService constructs the service and its render queue. Start
// must be called before worksheets are generated.
func NewWorksheetService(repo worksheetRepository, lessons worksheetLessonReader, catalog worksheetCatalogReader, exporter *export.PDFExporter, store *storage.LocalStorage, signer *storage.SignedURLSigner, queueCfg jobs.QueueConfig, logger *zap.Logger) *WorksheetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WorksheetService{
		repo:     repo,
		lessons:  lessons,
		catalog:  catalog,
		exporter: exporter,
		store:    store,
		signer:   signer,
		logger:   logger,
	}
	if queueCfg.Logger == nil {
		queueCfg.Logger = logger
	}
	s.queue = jobs.NewQueue("worksheet-pdf", s.handleRenderJob, queueCfg)
	return s
}

// Start launches the render workers.
func (s *WorksheetService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the render workers.
func (s *WorksheetService) Stop() {
	s.queue.Stop()
}

// GenerateForLesson builds the four differentiation tiers for a lesson.
// Existing worksheets for the lesson are replaced, and a PDF render job is
// enqueued per tier.
func (s *WorksheetService) GenerateForLesson(ctx context.Context, lessonID string) ([]models.Worksheet, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	le, err := s.catalog.FindByID(ctx, lesson.LearningExperienceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learning experience not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learning experience")
	}

	if err := s.repo.DeleteByLesson(ctx, lessonID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear existing worksheets")
	}

	criteria := le.SuccessCriteriaList()
	worksheets := make([]models.Worksheet, 0, 4)
	for _, tier := range models.AllWorksheetTiers() {
		description := tierDescription(tier)
		worksheet := &models.Worksheet{
			ID:                uuid.NewString(),
			LessonID:          lessonID,
			Tier:              tier,
			Title:             fmt.Sprintf("%s - %s", le.CoreConcept, tierLabel(tier)),
			Description:       &description,
			Subject:           le.Subject,
			YearLevel:         le.YearLevel,
			LearningIntention: le.LearningIntention,
			QuestionCount:     models.TierQuestionCount(tier),
		}
		questions := buildTierQuestions(worksheet.ID, tier, le, criteria)
		if err := s.repo.Create(ctx, worksheet, questions); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create worksheet")
		}
		if err := s.queue.Enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    worksheetPDFJobType,
			Payload: worksheet.ID,
		}); err != nil {
			s.logger.Warn("failed to enqueue worksheet render", zap.String("worksheet_id", worksheet.ID), zap.Error(err))
		}
		worksheets = append(worksheets, *worksheet)
	}
	return worksheets, nil
}

// Get returns a worksheet with its questions.
func (s *WorksheetService) Get(ctx context.Context, id string) (*models.Worksheet, []models.WorksheetQuestion, error) {
	worksheet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "worksheet not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load worksheet")
	}
	questions, err := s.repo.ListQuestions(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load worksheet questions")
	}
	return worksheet, questions, nil
}

// ListByLesson returns a lesson's worksheets in generation order.
func (s *WorksheetService) ListByLesson(ctx context.Context, lessonID string) ([]models.Worksheet, error) {
	list, err := s.repo.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list worksheets")
	}
	return list, nil
}

// GetByLessonAndTier returns the single worksheet at one tier of a lesson.
func (s *WorksheetService) GetByLessonAndTier(ctx context.Context, lessonID string, tier models.WorksheetTier) (*models.Worksheet, error) {
	worksheet, err := s.repo.FindByLessonAndTier(ctx, lessonID, tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "worksheet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load worksheet")
	}
	return worksheet, nil
}

// SignedDownloadURL issues a time-limited download token for a rendered
// worksheet PDF.
func (s *WorksheetService) SignedDownloadURL(ctx context.Context, worksheetID string) (string, time.Time, error) {
	worksheet, err := s.repo.FindByID(ctx, worksheetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "worksheet not found")
		}
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load worksheet")
	}
	if worksheet.FilePath == nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrConflict, "worksheet pdf not rendered yet")
	}
	token, expiresAt, err := s.signer.Generate(worksheet.ID, *worksheet.FilePath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return token, expiresAt, nil
}

// OpenByToken validates a download token and opens the stored PDF.
func (s *WorksheetService) OpenByToken(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "worksheet file not found")
	}
	return file, nil
}

// RenderPDF renders a worksheet to PDF, stores the file and records its
// path. Normally invoked by the render queue; exposed for synchronous use.
func (s *WorksheetService) RenderPDF(ctx context.Context, worksheetID string) error {
	worksheet, err := s.repo.FindByID(ctx, worksheetID)
	if err != nil {
		return fmt.Errorf("load worksheet %s: %w", worksheetID, err)
	}
	questions, err := s.repo.ListQuestions(ctx, worksheetID)
	if err != nil {
		return fmt.Errorf("load worksheet questions %s: %w", worksheetID, err)
	}

	var criteria []string
	if lesson, lessonErr := s.lessons.FindByID(ctx, worksheet.LessonID); lessonErr == nil {
		if catalogEntry, catErr := s.catalog.FindByID(ctx, lesson.LearningExperienceID); catErr == nil {
			criteria = catalogEntry.SuccessCriteriaList()
		}
	}

	doc := export.WorksheetDocument{
		Title:             worksheet.Title,
		Subtitle:          fmt.Sprintf("%s - Year %d", worksheet.Subject, worksheet.YearLevel),
		LearningIntention: worksheet.LearningIntention,
		SuccessCriteria:   criteria,
	}
	for _, q := range questions {
		line := export.WorksheetQuestionLine{Number: q.QuestionNumber, Text: q.QuestionText}
		if q.Hints != nil {
			line.Hints = *q.Hints
		}
		doc.Questions = append(doc.Questions, line)
	}

	data, err := s.exporter.RenderWorksheet(doc)
	if err != nil {
		return fmt.Errorf("render worksheet %s: %w", worksheetID, err)
	}

	filename := fmt.Sprintf("%s-%s.pdf", worksheet.LessonID, worksheet.Tier)
	relPath, err := s.store.Save(filename, data)
	if err != nil {
		return fmt.Errorf("store worksheet %s: %w", worksheetID, err)
	}
	if err := s.repo.SetFilePath(ctx, worksheetID, relPath); err != nil {
		return fmt.Errorf("record worksheet path %s: %w", worksheetID, err)
	}

	s.logger.Info("worksheet pdf rendered",
		zap.String("worksheet_id", worksheetID),
		zap.String("tier", string(worksheet.Tier)),
		zap.String("path", relPath))
	return nil
}

func (s *WorksheetService) handleRenderJob(ctx context.Context, job jobs.Job) error {
	worksheetID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("worksheet job %s: unexpected payload %T", job.ID, job.Payload)
	}
	return s.RenderPDF(ctx, worksheetID)
}

func tierLabel(tier models.WorksheetTier) string {
	switch tier {
	case models.TierMild:
		return "Mild"
	case models.TierMedium:
		return "Medium"
	case models.TierSpicy:
		return "Spicy"
	case models.TierEnrichment:
		return "Enrichment"
	default:
		return string(tier)
	}
}

func tierDescription(tier models.WorksheetTier) string {
	switch tier {
	case models.TierMild:
		return "Scaffolded questions building foundational understanding"
	case models.TierMedium:
		return "Independent practice at the expected level"
	case models.TierSpicy:
		return "Challenge questions extending beyond the expected level"
	case models.TierEnrichment:
		return "Open-ended investigations for early finishers"
	default:
		return ""
	}
}

// buildTierQuestions produces the tier's question set from the learning
// experience. Questions cycle through the success criteria so each
// criterion gets coverage; stems scale with the tier.
func buildTierQuestions(worksheetID string, tier models.WorksheetTier, le *models.LearningExperience, criteria []string) []models.WorksheetQuestion {
	count := models.TierQuestionCount(tier)
	questions := make([]models.WorksheetQuestion, 0, count)
	for i := 0; i < count; i++ {
		focus := le.LearningIntention
		var hint *string
		if len(criteria) > 0 {
			criterion := criteria[i%len(criteria)]
			focus = criterion
			h := "Focus on: " + criterion
			hint = &h
		}
		difficulty := tierDifficulty(tier)
		questions = append(questions, models.WorksheetQuestion{
			ID:              uuid.NewString(),
			WorksheetID:     worksheetID,
			QuestionNumber:  i + 1,
			QuestionText:    tierQuestionStem(tier, i+1, le.CoreConcept, focus),
			Tier:            tier,
			Hints:           hint,
			DifficultyLevel: &difficulty,
		})
	}
	return questions
}

func tierQuestionStem(tier models.WorksheetTier, number int, concept, focus string) string {
	switch tier {
	case models.TierMild:
		return fmt.Sprintf("Question %d: Identify and describe one example of %s. (%s)", number, concept, focus)
	case models.TierMedium:
		return fmt.Sprintf("Question %d: Explain how %s applies in this situation. (%s)", number, concept, focus)
	case models.TierSpicy:
		return fmt.Sprintf("Question %d: Analyse and justify your reasoning about %s. (%s)", number, concept, focus)
	case models.TierEnrichment:
		return fmt.Sprintf("Question %d: Design your own investigation of %s and evaluate the outcome. (%s)", number, concept, focus)
	default:
		return fmt.Sprintf("Question %d: %s", number, focus)
	}
}

func tierDifficulty(tier models.WorksheetTier) int {
	switch tier {
	case models.TierMild:
		return 1
	case models.TierMedium:
		return 2
	case models.TierSpicy:
		return 3
	case models.TierEnrichment:
		return 4
	default:
		return 0
	}
}
