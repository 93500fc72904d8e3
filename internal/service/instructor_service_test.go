package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	appErrors "github.com/noah-isme/sis-admin-api/pkg/errors"
)

type mockInstructorRepo struct {
	instructors map[int64]models.Instructor
	emails      map[string]int64
	courses     int64
	created     *models.Instructor
	deleted     []int64
	nextID      int64
}

func (m *mockInstructorRepo) List(ctx context.Context) ([]models.InstructorDetail, error) {
	var list []models.InstructorDetail
	for _, i := range m.instructors {
		list = append(list, models.InstructorDetail{Instructor: i})
	}
	return list, nil
}

func (m *mockInstructorRepo) FindByID(ctx context.Context, id int64) (*models.InstructorDetail, error) {
	if i, ok := m.instructors[id]; ok {
		return &models.InstructorDetail{Instructor: i}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInstructorRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	id, ok := m.emails[email]
	return ok && id != excludeID, nil
}

func (m *mockInstructorRepo) Create(ctx context.Context, instructor *models.Instructor) error {
	if m.instructors == nil {
		m.instructors = make(map[int64]models.Instructor)
	}
	if m.emails == nil {
		m.emails = make(map[string]int64)
	}
	m.nextID++
	instructor.ID = m.nextID
	m.instructors[instructor.ID] = *instructor
	m.emails[instructor.Email] = instructor.ID
	m.created = instructor
	return nil
}

func (m *mockInstructorRepo) Update(ctx context.Context, instructor *models.Instructor) error {
	m.instructors[instructor.ID] = *instructor
	return nil
}

func (m *mockInstructorRepo) Delete(ctx context.Context, id int64) error {
	delete(m.instructors, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockInstructorRepo) CountCourses(ctx context.Context, id int64) (int64, error) {
	return m.courses, nil
}

type mockInstructorCourses struct{}

func (m *mockInstructorCourses) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error) {
	return []models.Course{{ID: 1, Code: "CS101", InstructorID: instructorID}}, nil
}

func newInstructorService(repo *mockInstructorRepo) *InstructorService {
	return NewInstructorService(repo, &mockDepartmentReader{}, &mockInstructorCourses{}, validator.New(), zap.NewNop(), bcrypt.MinCost)
}

func TestInstructorServiceCreate(t *testing.T) {
	repo := &mockInstructorRepo{}
	svc := newInstructorService(repo)

	instructor, err := svc.Create(context.Background(), CreateInstructorRequest{
		Name:         "Dr. Carter",
		Email:        "carter@example.com",
		Password:     "secret1",
		DepartmentID: 1,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", instructor.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(instructor.PasswordHash), []byte("secret1")))
}

func TestInstructorServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockInstructorRepo{
		instructors: map[int64]models.Instructor{1: {ID: 1, Email: "carter@example.com"}},
		emails:      map[string]int64{"carter@example.com": 1},
	}
	svc := newInstructorService(repo)

	_, err := svc.Create(context.Background(), CreateInstructorRequest{
		Name:         "Another Carter",
		Email:        "carter@example.com",
		Password:     "secret1",
		DepartmentID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestInstructorServiceCreateMissingDepartment(t *testing.T) {
	svc := newInstructorService(&mockInstructorRepo{})

	_, err := svc.Create(context.Background(), CreateInstructorRequest{
		Name:         "Dr. Carter",
		Email:        "carter@example.com",
		Password:     "secret1",
		DepartmentID: 99,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestInstructorServiceDeleteRestricted(t *testing.T) {
	repo := &mockInstructorRepo{
		instructors: map[int64]models.Instructor{1: {ID: 1, Email: "carter@example.com"}},
		courses:     2,
	}
	svc := newInstructorService(repo)

	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestInstructorServiceGetCourses(t *testing.T) {
	repo := &mockInstructorRepo{
		instructors: map[int64]models.Instructor{1: {ID: 1, Email: "carter@example.com"}},
	}
	svc := newInstructorService(repo)

	courses, err := svc.GetCourses(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].Code)
}
