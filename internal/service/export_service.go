package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/planbook-app/planbook-api/internal/models"
	appErrors "github.com/planbook-app/planbook-api/pkg/errors"
	"github.com/planbook-app/planbook-api/pkg/export"
)

// ExportFormat names a supported export rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportProgressReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentProgress, error)
	ListByLearningExperience(ctx context.Context, learningExperienceID string) ([]models.StudentProgress, error)
}

type exportStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type exportCatalogReader interface {
	FindByID(ctx context.Context, id string) (*models.LearningExperience, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered export ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders class and student progress reports.
type ExportService struct {
	progress exportProgressReader
	students exportStudentReader
	catalog  exportCatalogReader
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(progress exportProgressReader, students exportStudentReader, catalog exportCatalogReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{progress: progress, students: students, catalog: catalog, csv: csv, pdf: pdf, logger: logger}
}

// ClassProgress renders every student's progress against one learning
// experience.
func (s *ExportService) ClassProgress(ctx context.Context, learningExperienceID string, format ExportFormat) (*ExportResult, error) {
	le, err := s.catalog.FindByID(ctx, learningExperienceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learning experience not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learning experience")
	}

	records, err := s.progress.ListByLearningExperience(ctx, learningExperienceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class progress")
	}

	dataset := export.Dataset{Headers: []string{"Student", "Mastery Level", "Evidence Count", "Trend", "Last Evidence"}}
	for _, record := range records {
		name := record.StudentID
		if student, studentErr := s.students.FindByID(ctx, record.StudentID); studentErr == nil {
			name = student.FullName()
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":        name,
			"Mastery Level":  strconv.Itoa(record.MasteryLevel),
			"Evidence Count": strconv.Itoa(record.EvidenceCount),
			"Trend":          string(record.Trend),
			"Last Evidence":  formatEvidenceDate(record.LastEvidenceDate),
		})
	}

	title := fmt.Sprintf("Class Progress - %s", le.CoreConcept)
	base := fmt.Sprintf("class-progress-u%d-le%d", le.UnitNumber, le.ExperienceNumber)
	return s.render(dataset, title, base, format)
}

// StudentProgress renders one student's progress across all learning
// experiences.
func (s *ExportService) StudentProgress(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	records, err := s.progress.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student progress")
	}

	dataset := export.Dataset{Headers: []string{"Learning Experience", "Mastery Level", "Evidence Count", "Trend", "Last Evidence"}}
	for _, record := range records {
		leName := record.LearningExperienceID
		if le, leErr := s.catalog.FindByID(ctx, record.LearningExperienceID); leErr == nil {
			leName = fmt.Sprintf("Unit %d LE %d: %s", le.UnitNumber, le.ExperienceNumber, le.CoreConcept)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Learning Experience": leName,
			"Mastery Level":       strconv.Itoa(record.MasteryLevel),
			"Evidence Count":      strconv.Itoa(record.EvidenceCount),
			"Trend":               string(record.Trend),
			"Last Evidence":       formatEvidenceDate(record.LastEvidenceDate),
		})
	}

	title := fmt.Sprintf("Progress Report - %s", student.FullName())
	base := fmt.Sprintf("student-progress-%s", studentID)
	return s.render(dataset, title, base, format)
}

func (s *ExportService) render(dataset export.Dataset, title, base string, format ExportFormat) (*ExportResult, error) {
	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func formatEvidenceDate(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.Format("2006-01-02")
}
