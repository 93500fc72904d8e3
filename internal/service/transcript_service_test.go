package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sis-admin-api/internal/models"
	appErrors "github.com/noah-isme/sis-admin-api/pkg/errors"
)

type mockTranscriptSource struct {
	student *models.StudentDetail
	rows    []models.StudentCourseGrade
}

func (m *mockTranscriptSource) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func (m *mockTranscriptSource) ListCourseGrades(ctx context.Context, studentID int64) ([]models.StudentCourseGrade, error) {
	return m.rows, nil
}

func TestTranscriptServiceExportCSV(t *testing.T) {
	source := &mockTranscriptSource{
		student: &models.StudentDetail{Student: models.Student{ID: 1, Name: "Alice"}},
		rows: []models.StudentCourseGrade{
			{EnrollmentID: 1, Semester: "2024A", Course: models.CourseRef{Code: "CS101", Name: "Intro", Credits: 3}, Grade: &models.GradeSummary{Grade: 91.5, GradeLetter: "A-"}},
			{EnrollmentID: 2, Semester: "2024B", Course: models.CourseRef{Code: "CS102", Name: "Data Structures", Credits: 4}},
		},
	}
	svc := NewTranscriptService(source, zap.NewNop())

	transcript, err := svc.Export(context.Background(), 1, TranscriptFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", transcript.ContentType)
	assert.Equal(t, "transcript_1.csv", transcript.Filename)

	body := string(transcript.Content)
	assert.True(t, strings.HasPrefix(body, "Course Code,Course Name,Credits,Semester,Grade,Letter"))
	assert.Contains(t, body, "CS101,Intro,3,2024A,91.50,A-")
	assert.Contains(t, body, "CS102,Data Structures,4,2024B,pending,-")
}

func TestTranscriptServiceExportPDF(t *testing.T) {
	source := &mockTranscriptSource{
		student: &models.StudentDetail{Student: models.Student{ID: 1, Name: "Alice"}},
		rows: []models.StudentCourseGrade{
			{EnrollmentID: 1, Semester: "2024A", Course: models.CourseRef{Code: "CS101", Name: "Intro", Credits: 3}},
		},
	}
	svc := NewTranscriptService(source, zap.NewNop())

	transcript, err := svc.Export(context.Background(), 1, TranscriptFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", transcript.ContentType)
	assert.True(t, strings.HasPrefix(string(transcript.Content), "%PDF"))
}

func TestTranscriptServiceExportUnknownFormat(t *testing.T) {
	svc := NewTranscriptService(&mockTranscriptSource{}, zap.NewNop())

	_, err := svc.Export(context.Background(), 1, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTranscriptServiceExportMissingStudent(t *testing.T) {
	svc := NewTranscriptService(&mockTranscriptSource{}, zap.NewNop())

	_, err := svc.Export(context.Background(), 42, TranscriptFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
