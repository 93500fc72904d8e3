package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
)

func TestGradeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(int64(1), 88.5, "B+", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(3), now, now))

	grade := &models.Grade{EnrollmentID: 1, Grade: 88.5, GradeLetter: "B+"}
	require.NoError(t, repo.Create(context.Background(), grade))
	assert.Equal(t, int64(3), grade.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreateSecondGrade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(int64(1), 70.0, "C", nil).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "grades_enrollment_id_key"})

	err := repo.Create(context.Background(), &models.Grade{EnrollmentID: 1, Grade: 70, GradeLetter: "C"})
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryExistsByEnrollment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("SELECT 1 FROM grades WHERE enrollment_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEnrollment(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "enrollment_id", "grade", "grade_letter", "remarks", "created_at", "updated_at",
		"enrollment.id", "enrollment.semester", "enrollment.status",
		"student.id", "student.name", "student.email",
		"course.id", "course.name", "course.code", "course.credits",
	}).
		AddRow(int64(3), int64(1), 88.5, "B+", nil, now, now, int64(1), "2024A", "completed", int64(2), "Alice", "alice@example.com", int64(10), "Intro", "CS101", 3)
	mock.ExpectQuery("FROM grades g").
		WithArgs(int64(3)).
		WillReturnRows(rows)

	grade, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "B+", grade.GradeLetter)
	assert.Equal(t, "Alice", grade.Student.Name)
	assert.Equal(t, "CS101", grade.Course.Code)
	assert.Equal(t, models.EnrollmentStatusCompleted, grade.Enrollment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	mock.ExpectQuery("UPDATE grades").
		WithArgs(int64(3), 92.0, "A-", nil).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	grade := &models.Grade{ID: 3, EnrollmentID: 1, Grade: 92, GradeLetter: "A-"}
	require.NoError(t, repo.Update(context.Background(), grade))
	assert.Equal(t, now, grade.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
