package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
)

// CourseRepository manages persistence for course records.
type CourseRepository struct {
	db *database.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *database.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseDetailColumns = `c.id, c.name, c.code, c.credits, c.department_id, c.instructor_id, c.created_at, c.updated_at,
        d.id AS "department.id", d.name AS "department.name", d.code AS "department.code",
        i.id AS "instructor.id", i.name AS "instructor.name", i.email AS "instructor.email"`

// List returns all courses joined with department and instructor.
func (r *CourseRepository) List(ctx context.Context) ([]models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses c
        JOIN departments d ON d.id = c.department_id
        JOIN instructors i ON i.id = c.instructor_id
        ORDER BY c.id`, courseDetailColumns)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course with department and instructor.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses c
        JOIN departments d ON d.id = c.department_id
        JOIN instructors i ON i.id = c.instructor_id
        WHERE c.id = $1`, courseDetailColumns)
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByCode checks if a course with the given code exists, optionally
// excluding an ID.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM courses WHERE code = $1"
	args := []interface{}{code}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (name, code, credits, department_id, instructor_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query, course.Name, course.Code, course.Credits, course.DepartmentID, course.InstructorID).
		Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", database.TranslateError(err))
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses
        SET name = $2, code = $3, credits = $4, department_id = $5, instructor_id = $6, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query, course.ID, course.Name, course.Code, course.Credits, course.DepartmentID, course.InstructorID).
		Scan(&course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update course: %w", database.TranslateError(err))
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", database.TranslateError(err))
	}
	return nil
}

// CountEnrollments reports how many enrollments still reference the course.
func (r *CourseRepository) CountEnrollments(ctx context.Context, id int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count course enrollments: %w", err)
	}
	return count, nil
}

// ListByDepartment returns the courses of one department.
func (r *CourseRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]models.Course, error) {
	const query = `SELECT id, name, code, credits, department_id, instructor_id, created_at, updated_at
        FROM courses WHERE department_id = $1 ORDER BY id`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department courses: %w", err)
	}
	return courses, nil
}

// ListByInstructor returns the courses taught by one instructor.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error) {
	const query = `SELECT id, name, code, credits, department_id, instructor_id, created_at, updated_at
        FROM courses WHERE instructor_id = $1 ORDER BY id`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return courses, nil
}
