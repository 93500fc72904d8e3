package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/sis-admin-api/internal/models"
	appErrors "github.com/noah-isme/sis-admin-api/pkg/errors"
	"github.com/noah-isme/sis-admin-api/pkg/export"
)

// Transcript formats supported by the exporter.
const (
	TranscriptFormatCSV = "csv"
	TranscriptFormatPDF = "pdf"
)

type transcriptStudentSource interface {
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	ListCourseGrades(ctx context.Context, studentID int64) ([]models.StudentCourseGrade, error)
}

// Transcript is a rendered transcript document ready to be served.
type Transcript struct {
	Content     []byte
	ContentType string
	Filename    string
}

// TranscriptService renders a student's course and grade history as a
// downloadable document.
type TranscriptService struct {
	students transcriptStudentSource
	logger   *zap.Logger
}

// NewTranscriptService constructs the transcript service.
func NewTranscriptService(students transcriptStudentSource, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		students: students,
		logger:   logger,
	}
}

// Export renders the student's transcript in the requested format.
// Enrollments without a recorded grade show up as pending.
func (s *TranscriptService) Export(ctx context.Context, studentID int64, format string) (*Transcript, error) {
	if format != TranscriptFormatCSV && format != TranscriptFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	rows, err := s.students.ListCourseGrades(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript rows")
	}

	table := export.Table{
		Title:   fmt.Sprintf("Transcript - %s", student.Name),
		Headers: []string{"Course Code", "Course Name", "Credits", "Semester", "Grade", "Letter"},
	}
	for _, row := range rows {
		grade := "pending"
		letter := "-"
		if row.Grade != nil {
			grade = strconv.FormatFloat(row.Grade.Grade, 'f', 2, 64)
			letter = row.Grade.GradeLetter
		}
		table.Rows = append(table.Rows, []string{
			row.Course.Code,
			row.Course.Name,
			strconv.Itoa(row.Course.Credits),
			row.Semester,
			grade,
			letter,
		})
	}

	switch format {
	case TranscriptFormatPDF:
		content, err := export.PDF(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript pdf")
		}
		return &Transcript{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("transcript_%d.pdf", studentID),
		}, nil
	default:
		content, err := export.CSV(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript csv")
		}
		return &Transcript{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("transcript_%d.csv", studentID),
		}, nil
	}
}
