package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
)

// GradeRepository handles persistence of grades.
type GradeRepository struct {
	db *database.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *database.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeDetailColumns = `g.id, g.enrollment_id, g.grade, g.grade_letter, g.remarks, g.created_at, g.updated_at,
        e.id AS "enrollment.id", e.semester AS "enrollment.semester", e.status AS "enrollment.status",
        s.id AS "student.id", s.name AS "student.name", s.email AS "student.email",
        c.id AS "course.id", c.name AS "course.name", c.code AS "course.code", c.credits AS "course.credits"`

const gradeDetailJoins = `FROM grades g
        JOIN enrollments e ON e.id = g.enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id`

// List returns all grades joined with enrollment, student and course.
func (r *GradeRepository) List(ctx context.Context) ([]models.GradeDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY g.id`, gradeDetailColumns, gradeDetailJoins)
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// FindByID returns a grade with enrollment, student and course joins.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.GradeDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE g.id = $1`, gradeDetailColumns, gradeDetailJoins)
	var grade models.GradeDetail
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// FindRowByID returns the bare grade row.
func (r *GradeRepository) FindRowByID(ctx context.Context, id int64) (*models.Grade, error) {
	const query = `SELECT id, enrollment_id, grade, grade_letter, remarks, created_at, updated_at
        FROM grades WHERE id = $1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ExistsByEnrollment checks whether the enrollment already has a grade.
func (r *GradeRepository) ExistsByEnrollment(ctx context.Context, enrollmentID int64) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM grades WHERE enrollment_id = $1 LIMIT 1`, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment grade: %w", err)
	}
	return true, nil
}

// Create persists a new grade.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	const query = `INSERT INTO grades (enrollment_id, grade, grade_letter, remarks)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query, grade.EnrollmentID, grade.Grade, grade.GradeLetter, grade.Remarks).
		Scan(&grade.ID, &grade.CreatedAt, &grade.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create grade: %w", database.TranslateError(err))
	}
	return nil
}

// Update modifies an existing grade.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	const query = `UPDATE grades
        SET grade = $2, grade_letter = $3, remarks = $4, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query, grade.ID, grade.Grade, grade.GradeLetter, grade.Remarks).
		Scan(&grade.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update grade: %w", database.TranslateError(err))
	}
	return nil
}

// Delete removes a grade.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}

// ListByEnrollment returns the grades recorded for one enrollment with
// joins. The schema allows at most one.
func (r *GradeRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.GradeDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE g.enrollment_id = $1 ORDER BY g.id`, gradeDetailColumns, gradeDetailJoins)
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list enrollment grades: %w", err)
	}
	return grades, nil
}

// ListByStudent returns every graded enrollment of the student, pairing the
// grade with its course and an enrollment summary.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentGrade, error) {
	const query = `SELECT g.id, g.enrollment_id, g.grade, g.grade_letter, g.remarks, g.created_at, g.updated_at,
        c.id AS "course.id", c.name AS "course.name", c.code AS "course.code", c.credits AS "course.credits",
        e.id AS "enrollment.id", e.semester AS "enrollment.semester", e.status AS "enrollment.status"
        FROM grades g
        JOIN enrollments e ON e.id = g.enrollment_id
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1
        ORDER BY g.id`
	var grades []models.StudentGrade
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// ListByCourse returns the grades of the course's enrollments joined with
// the student.
func (r *GradeRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.GradeDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE e.course_id = $1 ORDER BY g.id`, gradeDetailColumns, gradeDetailJoins)
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, courseID); err != nil {
		return nil, fmt.Errorf("list course grades: %w", err)
	}
	return grades, nil
}
