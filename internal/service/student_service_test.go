package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	appErrors "github.com/noah-isme/sis-admin-api/pkg/errors"
)

type mockStudentRepo struct {
	students    map[int64]models.Student
	emails      map[string]int64
	enrollments int64
	grades      []models.StudentCourseGrade
	created     *models.Student
	deleted     []int64
	nextID      int64
}

func (m *mockStudentRepo) List(ctx context.Context) ([]models.StudentDetail, error) {
	var list []models.StudentDetail
	for _, s := range m.students {
		list = append(list, models.StudentDetail{Student: s})
	}
	return list, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return &models.StudentDetail{Student: s}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	id, ok := m.emails[email]
	return ok && id != excludeID, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[int64]models.Student)
	}
	if m.emails == nil {
		m.emails = make(map[string]int64)
	}
	m.nextID++
	student.ID = m.nextID
	m.students[student.ID] = *student
	m.emails[student.Email] = student.ID
	m.created = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id int64) error {
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockStudentRepo) CountEnrollments(ctx context.Context, id int64) (int64, error) {
	return m.enrollments, nil
}

func (m *mockStudentRepo) ListCourseGrades(ctx context.Context, studentID int64) ([]models.StudentCourseGrade, error) {
	return m.grades, nil
}

type mockDepartmentReader struct{}

func (m *mockDepartmentReader) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	if id == 99 {
		return nil, sql.ErrNoRows
	}
	return &models.Department{ID: id, Name: "Computer Science", Code: "CS"}, nil
}

type mockStudentEnrollments struct {
	enrollments []models.StudentEnrollment
}

func (m *mockStudentEnrollments) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentEnrollment, error) {
	return m.enrollments, nil
}

func newStudentService(repo *mockStudentRepo) *StudentService {
	return NewStudentService(repo, &mockDepartmentReader{}, &mockStudentEnrollments{}, validator.New(), zap.NewNop(), bcrypt.MinCost)
}

func TestStudentServiceCreateHashesPassword(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := newStudentService(repo)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:         "Alice",
		Email:        "alice@example.com",
		Password:     "secret1",
		DepartmentID: 1,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", student.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("secret1")))
}

func TestStudentServicePasswordNeverSerialized(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := newStudentService(repo)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:         "Alice",
		Email:        "alice@example.com",
		Password:     "secret1",
		DepartmentID: 1,
	})
	require.NoError(t, err)

	raw, err := json.Marshal(student)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), student.PasswordHash)
}

func TestStudentServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockStudentRepo{
		students: map[int64]models.Student{1: {ID: 1, Email: "alice@example.com"}},
		emails:   map[string]int64{"alice@example.com": 1},
	}
	svc := newStudentService(repo)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:         "Other Alice",
		Email:        "alice@example.com",
		Password:     "secret1",
		DepartmentID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateMissingDepartment(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{})

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:         "Alice",
		Email:        "alice@example.com",
		Password:     "secret1",
		DepartmentID: 99,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateInvalidGender(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{})

	gender := "unknown"
	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:         "Alice",
		Email:        "alice@example.com",
		Password:     "secret1",
		Gender:       &gender,
		DepartmentID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateShortPassword(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{})

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Name:         "Alice",
		Email:        "alice@example.com",
		Password:     "short",
		DepartmentID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateEmailConflict(t *testing.T) {
	repo := &mockStudentRepo{
		students: map[int64]models.Student{
			1: {ID: 1, Email: "alice@example.com"},
			2: {ID: 2, Email: "bob@example.com"},
		},
		emails: map[string]int64{"alice@example.com": 1, "bob@example.com": 2},
	}
	svc := newStudentService(repo)

	email := "bob@example.com"
	_, err := svc.Update(context.Background(), 1, UpdateStudentRequest{Email: &email})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateRehashesPassword(t *testing.T) {
	repo := &mockStudentRepo{
		students: map[int64]models.Student{1: {ID: 1, Email: "alice@example.com", PasswordHash: "old-hash"}},
		emails:   map[string]int64{"alice@example.com": 1},
	}
	svc := newStudentService(repo)

	password := "newsecret"
	_, err := svc.Update(context.Background(), 1, UpdateStudentRequest{Password: &password})
	require.NoError(t, err)
	stored := repo.students[1]
	assert.NotEqual(t, "old-hash", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newsecret")))
}

func TestStudentServiceDeleteRestricted(t *testing.T) {
	repo := &mockStudentRepo{
		students:    map[int64]models.Student{1: {ID: 1, Email: "alice@example.com"}},
		enrollments: 2,
	}
	svc := newStudentService(repo)

	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestStudentServiceGetGrades(t *testing.T) {
	repo := &mockStudentRepo{
		students: map[int64]models.Student{1: {ID: 1, Email: "alice@example.com"}},
		grades: []models.StudentCourseGrade{
			{EnrollmentID: 1, Semester: "2024A", Course: models.CourseRef{ID: 1, Code: "CS101"}},
			{EnrollmentID: 2, Semester: "2024B", Course: models.CourseRef{ID: 2, Code: "CS102"}, Grade: &models.GradeSummary{ID: 5, Grade: 91.5, GradeLetter: "A-"}},
		},
	}
	svc := newStudentService(repo)

	grades, err := svc.GetGrades(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Nil(t, grades[0].Grade)
	require.NotNil(t, grades[1].Grade)
	assert.Equal(t, "A-", grades[1].Grade.GradeLetter)
}
