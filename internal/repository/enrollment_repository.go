package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *database.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *database.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentDetailColumns = `e.id, e.student_id, e.course_id, e.semester, e.enrollment_date, e.status, e.created_at, e.updated_at,
        s.id AS "student.id", s.name AS "student.name", s.email AS "student.email",
        c.id AS "course.id", c.name AS "course.name", c.code AS "course.code", c.credits AS "course.credits"`

// List returns all enrollments joined with student and course.
func (r *EnrollmentRepository) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        ORDER BY e.id`, enrollmentDetailColumns)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns a bare enrollment row.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, semester, enrollment_date, status, created_at, updated_at
        FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with student and course joins.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id int64) (*models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.id = $1`, enrollmentDetailColumns)
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByTriple checks whether an enrollment exists for the
// (student, course, semester) combination, regardless of status.
func (r *EnrollmentRepository) ExistsByTriple(ctx context.Context, studentID, courseID int64, semester string) (bool, error) {
	const query = `SELECT 1 FROM enrollments
        WHERE student_id = $1 AND course_id = $2 AND semester = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID, semester); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment triple: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (student_id, course_id, semester, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, enrollment_date, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query, enrollment.StudentID, enrollment.CourseID, enrollment.Semester, enrollment.Status).
		Scan(&enrollment.ID, &enrollment.EnrollmentDate, &enrollment.CreatedAt, &enrollment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create enrollment: %w", database.TranslateError(err))
	}
	return nil
}

// UpdateStatus changes the enrollment status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = now() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", database.TranslateError(err))
	}
	return nil
}

// ListByStudent returns the student's enrollments joined with course and
// grade.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentEnrollment, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.semester, e.enrollment_date, e.status, e.created_at, e.updated_at,
        c.id AS "course.id", c.name AS "course.name", c.code AS "course.code", c.credits AS "course.credits",
        g.id AS grade_id, g.grade AS grade_value, g.grade_letter, g.remarks AS grade_remarks
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        LEFT JOIN grades g ON g.enrollment_id = e.id
        WHERE e.student_id = $1
        ORDER BY e.id`
	var rows []models.StudentEnrollment
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	for i := range rows {
		if rows[i].GradeID != nil {
			rows[i].Grade = &models.GradeSummary{
				ID:          *rows[i].GradeID,
				Grade:       *rows[i].GradeValue,
				GradeLetter: *rows[i].GradeLetter,
				Remarks:     rows[i].Remarks,
			}
		}
	}
	return rows, nil
}

// ListByCourse returns the course's enrollments joined with student and
// grade.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.CourseEnrollment, error) {
	const query = `SELECT e.id, e.student_id, e.course_id, e.semester, e.enrollment_date, e.status, e.created_at, e.updated_at,
        s.id AS "student.id", s.name AS "student.name", s.email AS "student.email",
        g.id AS grade_id, g.grade AS grade_value, g.grade_letter, g.remarks AS grade_remarks
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        LEFT JOIN grades g ON g.enrollment_id = e.id
        WHERE e.course_id = $1
        ORDER BY e.id`
	var rows []models.CourseEnrollment
	if err := r.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	for i := range rows {
		if rows[i].GradeID != nil {
			rows[i].Grade = &models.GradeSummary{
				ID:          *rows[i].GradeID,
				Grade:       *rows[i].GradeValue,
				GradeLetter: *rows[i].GradeLetter,
				Remarks:     rows[i].Remarks,
			}
		}
	}
	return rows, nil
}
