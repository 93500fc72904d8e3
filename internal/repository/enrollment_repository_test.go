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

func TestEnrollmentRepositoryExistsByTriple(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM enrollments").
		WithArgs(int64(1), int64(2), "2024A").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByTriple(context.Background(), 1, 2, "2024A")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDefaultsActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO enrollments").
		WithArgs(int64(1), int64(2), "2024A", models.EnrollmentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "enrollment_date", "created_at", "updated_at"}).AddRow(int64(7), now, now, now))

	enrollment := &models.Enrollment{StudentID: 1, CourseID: 2, Semester: "2024A"}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.Equal(t, int64(7), enrollment.ID)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicateTriple(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("INSERT INTO enrollments").
		WithArgs(int64(1), int64(2), "2024A", models.EnrollmentStatusActive).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "enrollments_student_id_course_id_semester_key"})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: 1, CourseID: 2, Semester: "2024A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "semester", "enrollment_date", "status", "created_at", "updated_at",
		"course.id", "course.name", "course.code", "course.credits",
		"grade_id", "grade_value", "grade_letter", "grade_remarks",
	}).
		AddRow(int64(1), int64(1), int64(10), "2024A", now, "completed", now, now, int64(10), "Intro", "CS101", 3, int64(5), 88.0, "B+", "solid work").
		AddRow(int64(2), int64(1), int64(11), "2024B", now, "active", now, now, int64(11), "Data Structures", "CS102", 4, nil, nil, nil, nil)
	mock.ExpectQuery("LEFT JOIN grades g").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	enrollments, err := repo.ListByStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)

	require.NotNil(t, enrollments[0].Grade)
	assert.Equal(t, "B+", enrollments[0].Grade.GradeLetter)
	require.NotNil(t, enrollments[0].Grade.Remarks)
	assert.Equal(t, "solid work", *enrollments[0].Grade.Remarks)
	assert.Equal(t, models.EnrollmentStatusCompleted, enrollments[0].Status)

	assert.Nil(t, enrollments[1].Grade)
	assert.Equal(t, "CS102", enrollments[1].Course.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteWithGrade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("DELETE FROM enrollments WHERE id").
		WithArgs(int64(1)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "grades_enrollment_id_fkey"})

	err := repo.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrForeignKey)
	require.NoError(t, mock.ExpectationsWereMet())
}
