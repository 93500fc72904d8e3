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

type tripleKey struct {
	studentID int64
	courseID  int64
	semester  string
}

type mockEnrollmentRepo struct {
	enrollments map[int64]models.Enrollment
	triples     map[tripleKey]bool
	created     *models.Enrollment
	statuses    map[int64]models.EnrollmentStatus
	deleted     []int64
	nextID      int64
}

func (m *mockEnrollmentRepo) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	var list []models.EnrollmentDetail
	for _, e := range m.enrollments {
		list = append(list, models.EnrollmentDetail{Enrollment: e})
	}
	return list, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	if e, ok := m.enrollments[id]; ok {
		return &models.EnrollmentDetail{Enrollment: e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ExistsByTriple(ctx context.Context, studentID, courseID int64, semester string) (bool, error) {
	return m.triples[tripleKey{studentID, courseID, semester}], nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[int64]models.Enrollment)
	}
	if m.triples == nil {
		m.triples = make(map[tripleKey]bool)
	}
	m.nextID++
	enrollment.ID = m.nextID
	m.enrollments[enrollment.ID] = *enrollment
	m.triples[tripleKey{enrollment.StudentID, enrollment.CourseID, enrollment.Semester}] = true
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[int64]models.EnrollmentStatus)
	}
	m.statuses[id] = status
	if e, ok := m.enrollments[id]; ok {
		e.Status = status
		m.enrollments[id] = e
	}
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id int64) error {
	delete(m.enrollments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentEnrollment, error) {
	var list []models.StudentEnrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			list = append(list, models.StudentEnrollment{Enrollment: e})
		}
	}
	return list, nil
}

func (m *mockEnrollmentRepo) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseEnrollment, error) {
	var list []models.CourseEnrollment
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			list = append(list, models.CourseEnrollment{Enrollment: e})
		}
	}
	return list, nil
}

type mockStudentReader struct{}

func (m *mockStudentReader) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	if id == 99 {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{Student: models.Student{ID: id, Name: "Alice"}}, nil
}

type mockCourseReader struct{}

func (m *mockCourseReader) FindByID(ctx context.Context, id int64) (*models.CourseDetail, error) {
	if id == 99 {
		return nil, sql.ErrNoRows
	}
	return &models.CourseDetail{Course: models.Course{ID: id, Code: "CS101", Credits: 3}}, nil
}

type mockGradeChecker struct {
	graded map[int64]bool
}

func (m *mockGradeChecker) ExistsByEnrollment(ctx context.Context, enrollmentID int64) (bool, error) {
	return m.graded[enrollmentID], nil
}

func newEnrollmentService(repo *mockEnrollmentRepo, grades *mockGradeChecker) *EnrollmentService {
	if grades == nil {
		grades = &mockGradeChecker{}
	}
	return NewEnrollmentService(repo, &mockStudentReader{}, &mockCourseReader{}, grades, validator.New(), zap.NewNop())
}

func TestEnrollmentServiceCreate(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo, nil)

	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: 1, CourseID: 2, Semester: "2024A"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.NotNil(t, repo.created)
}

func TestEnrollmentServiceCreateDuplicateTriple(t *testing.T) {
	repo := &mockEnrollmentRepo{
		triples: map[tripleKey]bool{{1, 2, "2024A"}: true},
	}
	svc := newEnrollmentService(repo, nil)

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: 1, CourseID: 2, Semester: "2024A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceCreateSameCourseOtherSemester(t *testing.T) {
	repo := &mockEnrollmentRepo{
		triples: map[tripleKey]bool{{1, 2, "2024A"}: true},
	}
	svc := newEnrollmentService(repo, nil)

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: 1, CourseID: 2, Semester: "2024B"})
	require.NoError(t, err)
}

func TestEnrollmentServiceCreateMissingStudent(t *testing.T) {
	svc := newEnrollmentService(&mockEnrollmentRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: 99, CourseID: 2, Semester: "2024A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceCreateMissingCourse(t *testing.T) {
	svc := newEnrollmentService(&mockEnrollmentRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: 1, CourseID: 99, Semester: "2024A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceUpdateStatus(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[int64]models.Enrollment{1: {ID: 1, StudentID: 1, CourseID: 2, Semester: "2024A", Status: models.EnrollmentStatusActive}},
	}
	svc := newEnrollmentService(repo, nil)

	detail, err := svc.UpdateStatus(context.Background(), 1, UpdateEnrollmentStatusRequest{Status: models.EnrollmentStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, detail.Status)
}

func TestEnrollmentServiceUpdateStatusInvalid(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[int64]models.Enrollment{1: {ID: 1, Status: models.EnrollmentStatusActive}},
	}
	svc := newEnrollmentService(repo, nil)

	_, err := svc.UpdateStatus(context.Background(), 1, UpdateEnrollmentStatusRequest{Status: "paused"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceDeleteRestrictedByGrade(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[int64]models.Enrollment{1: {ID: 1, Status: models.EnrollmentStatusActive}},
	}
	svc := newEnrollmentService(repo, &mockGradeChecker{graded: map[int64]bool{1: true}})

	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestEnrollmentServiceGetByStudent(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[int64]models.Enrollment{
			1: {ID: 1, StudentID: 1, CourseID: 2, Semester: "2024A", Status: models.EnrollmentStatusActive},
			2: {ID: 2, StudentID: 3, CourseID: 2, Semester: "2024A", Status: models.EnrollmentStatusActive},
		},
	}
	svc := newEnrollmentService(repo, nil)

	enrollments, err := svc.GetByStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, int64(1), enrollments[0].ID)
}

func TestEnrollmentServiceGetByStudentMissing(t *testing.T) {
	svc := newEnrollmentService(&mockEnrollmentRepo{}, nil)

	_, err := svc.GetByStudent(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceGetByCourse(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[int64]models.Enrollment{
			1: {ID: 1, StudentID: 1, CourseID: 2, Semester: "2024A", Status: models.EnrollmentStatusActive},
			2: {ID: 2, StudentID: 1, CourseID: 5, Semester: "2024A", Status: models.EnrollmentStatusActive},
		},
	}
	svc := newEnrollmentService(repo, nil)

	enrollments, err := svc.GetByCourse(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, int64(2), enrollments[0].ID)
}

func TestEnrollmentServiceDelete(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[int64]models.Enrollment{1: {ID: 1, Status: models.EnrollmentStatusActive}},
	}
	svc := newEnrollmentService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, repo.deleted)
}
