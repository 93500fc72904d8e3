package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *database.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailColumns = `s.id, s.name, s.email, s.password_hash, s.gender, s.department_id, s.enrollment_date, s.created_at, s.updated_at,
        d.id AS "department.id", d.name AS "department.name", d.code AS "department.code"`

// List returns all students joined with their department.
func (r *StudentRepository) List(ctx context.Context) ([]models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s
        JOIN departments d ON d.id = s.department_id
        ORDER BY s.id`, studentDetailColumns)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student with its department.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s
        JOIN departments d ON d.id = s.department_id
        WHERE s.id = $1`, studentDetailColumns)
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmail checks if a student with the given email exists, optionally
// excluding an ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM students WHERE email = $1"
	args := []interface{}{email}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student email: %w", err)
	}
	return true, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (name, email, password_hash, gender, department_id, enrollment_date)
        VALUES ($1, $2, $3, $4, $5, now())
        RETURNING id, enrollment_date, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query, student.Name, student.Email, student.PasswordHash, student.Gender, student.DepartmentID).
		Scan(&student.ID, &student.EnrollmentDate, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create student: %w", database.TranslateError(err))
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students
        SET name = $2, email = $3, password_hash = $4, gender = $5, department_id = $6, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query, student.ID, student.Name, student.Email, student.PasswordHash, student.Gender, student.DepartmentID).
		Scan(&student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update student: %w", database.TranslateError(err))
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", database.TranslateError(err))
	}
	return nil
}

// CountEnrollments reports how many enrollments still reference the student.
func (r *StudentRepository) CountEnrollments(ctx context.Context, id int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE student_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count student enrollments: %w", err)
	}
	return count, nil
}

// ListByDepartment returns the students of one department.
func (r *StudentRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]models.Student, error) {
	const query = `SELECT id, name, email, password_hash, gender, department_id, enrollment_date, created_at, updated_at
        FROM students WHERE department_id = $1 ORDER BY id`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department students: %w", err)
	}
	return students, nil
}

// ListCourseGrades pairs each enrollment of the student with its course and
// the grade when one exists.
func (r *StudentRepository) ListCourseGrades(ctx context.Context, studentID int64) ([]models.StudentCourseGrade, error) {
	const query = `SELECT e.id AS enrollment_id, e.semester,
        c.id AS "course.id", c.name AS "course.name", c.code AS "course.code", c.credits AS "course.credits",
        g.id AS grade_id, g.grade AS grade_value, g.grade_letter, g.remarks AS grade_remarks
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        LEFT JOIN grades g ON g.enrollment_id = e.id
        WHERE e.student_id = $1
        ORDER BY e.id`
	var rows []models.StudentCourseGrade
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list student course grades: %w", err)
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
