package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sis-admin-api/internal/models"
	appErrors "github.com/noah-isme/sis-admin-api/pkg/errors"
)

type mockGradeRepo struct {
	grades       map[int64]models.Grade
	byEnrollment map[int64]int64
	created      *models.Grade
	deleted      []int64
	nextID       int64
}

func (m *mockGradeRepo) List(ctx context.Context) ([]models.GradeDetail, error) {
	var list []models.GradeDetail
	for _, g := range m.grades {
		list = append(list, models.GradeDetail{Grade: g})
	}
	return list, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id int64) (*models.GradeDetail, error) {
	if g, ok := m.grades[id]; ok {
		return &models.GradeDetail{Grade: g}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) FindRowByID(ctx context.Context, id int64) (*models.Grade, error) {
	if g, ok := m.grades[id]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) ExistsByEnrollment(ctx context.Context, enrollmentID int64) (bool, error) {
	_, ok := m.byEnrollment[enrollmentID]
	return ok, nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if m.grades == nil {
		m.grades = make(map[int64]models.Grade)
	}
	if m.byEnrollment == nil {
		m.byEnrollment = make(map[int64]int64)
	}
	m.nextID++
	grade.ID = m.nextID
	m.grades[grade.ID] = *grade
	m.byEnrollment[grade.EnrollmentID] = grade.ID
	m.created = grade
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	m.grades[grade.ID] = *grade
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id int64) error {
	if g, ok := m.grades[id]; ok {
		delete(m.byEnrollment, g.EnrollmentID)
	}
	delete(m.grades, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockGradeRepo) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.GradeDetail, error) {
	var list []models.GradeDetail
	for _, g := range m.grades {
		if g.EnrollmentID == enrollmentID {
			list = append(list, models.GradeDetail{Grade: g})
		}
	}
	return list, nil
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentGrade, error) {
	return nil, nil
}

func (m *mockGradeRepo) ListByCourse(ctx context.Context, courseID int64) ([]models.GradeDetail, error) {
	return nil, nil
}

type mockEnrollmentReader struct{}

func (m *mockEnrollmentReader) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	if id == 99 {
		return nil, sql.ErrNoRows
	}
	return &models.Enrollment{ID: id, StudentID: 1, CourseID: 2, Semester: "2024A", Status: models.EnrollmentStatusActive}, nil
}

func newGradeService(repo *mockGradeRepo) *GradeService {
	return NewGradeService(repo, &mockEnrollmentReader{}, &mockStudentReader{}, &mockCourseReader{}, validator.New(), zap.NewNop())
}

func floatPtr(v float64) *float64 { return &v }

func TestGradeServiceCreate(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := newGradeService(repo)

	grade, err := svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(88.5), GradeLetter: "B+"})
	require.NoError(t, err)
	assert.Equal(t, 88.5, grade.Grade)
	assert.NotNil(t, repo.created)
}

func TestGradeServiceCreateBoundaries(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{})

	_, err := svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(0), GradeLetter: "F"})
	require.NoError(t, err)

	svc = newGradeService(&mockGradeRepo{})
	_, err = svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(100), GradeLetter: "A+"})
	require.NoError(t, err)
}

func TestGradeServiceCreateOutOfRange(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{})

	_, err := svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(100.5), GradeLetter: "A+"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(-1), GradeLetter: "F"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceCreateInvalidLetter(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{})

	_, err := svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(70), GradeLetter: "E"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceCreateSecondGradeRejected(t *testing.T) {
	repo := &mockGradeRepo{
		grades:       map[int64]models.Grade{1: {ID: 1, EnrollmentID: 1, Grade: 75, GradeLetter: "C+"}},
		byEnrollment: map[int64]int64{1: 1},
	}
	svc := newGradeService(repo)

	_, err := svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(80), GradeLetter: "B"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceCreateMissingEnrollment(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{})

	_, err := svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 99, Grade: floatPtr(80), GradeLetter: "B"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceUpdatePartial(t *testing.T) {
	repo := &mockGradeRepo{
		grades:       map[int64]models.Grade{1: {ID: 1, EnrollmentID: 1, Grade: 75, GradeLetter: "C+"}},
		byEnrollment: map[int64]int64{1: 1},
	}
	svc := newGradeService(repo)

	letter := "B-"
	detail, err := svc.Update(context.Background(), 1, UpdateGradeRequest{GradeLetter: &letter})
	require.NoError(t, err)
	assert.Equal(t, "B-", detail.GradeLetter)
	assert.Equal(t, float64(75), detail.Grade.Grade)
}

func TestGradeServiceDelete(t *testing.T) {
	repo := &mockGradeRepo{
		grades:       map[int64]models.Grade{1: {ID: 1, EnrollmentID: 1, Grade: 75, GradeLetter: "C+"}},
		byEnrollment: map[int64]int64{1: 1},
	}
	svc := newGradeService(repo)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, repo.deleted)

	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceDeleteThenRecreate(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := newGradeService(repo)

	first, err := svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(75), GradeLetter: "C+"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(80), GradeLetter: "B"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), first.ID))

	second, err := svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(80), GradeLetter: "B"})
	require.NoError(t, err)
	assert.Equal(t, float64(80), second.Grade)

	_, err = svc.Create(context.Background(), CreateGradeRequest{EnrollmentID: 1, Grade: floatPtr(85), GradeLetter: "B+"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceGetByEnrollment(t *testing.T) {
	repo := &mockGradeRepo{
		grades:       map[int64]models.Grade{1: {ID: 1, EnrollmentID: 7, Grade: 90, GradeLetter: "A-"}},
		byEnrollment: map[int64]int64{7: 1},
	}
	svc := newGradeService(repo)

	grades, err := svc.GetByEnrollment(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "A-", grades[0].GradeLetter)
}
