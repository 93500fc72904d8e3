package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
)

// InstructorRepository manages persistence for instructor records.
type InstructorRepository struct {
	db *database.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *database.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

const instructorDetailColumns = `i.id, i.name, i.email, i.password_hash, i.department_id, i.created_at, i.updated_at,
        d.id AS "department.id", d.name AS "department.name", d.code AS "department.code"`

// List returns all instructors joined with their department.
func (r *InstructorRepository) List(ctx context.Context) ([]models.InstructorDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM instructors i
        JOIN departments d ON d.id = i.department_id
        ORDER BY i.id`, instructorDetailColumns)
	var instructors []models.InstructorDetail
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// FindByID fetches an instructor with its department.
func (r *InstructorRepository) FindByID(ctx context.Context, id int64) (*models.InstructorDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM instructors i
        JOIN departments d ON d.id = i.department_id
        WHERE i.id = $1`, instructorDetailColumns)
	var instructor models.InstructorDetail
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// ExistsByEmail checks if an instructor with the given email exists,
// optionally excluding an ID.
func (r *InstructorRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM instructors WHERE email = $1"
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
		return false, fmt.Errorf("check instructor email: %w", err)
	}
	return true, nil
}

// Create inserts a new instructor.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	const query = `INSERT INTO instructors (name, email, password_hash, department_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query, instructor.Name, instructor.Email, instructor.PasswordHash, instructor.DepartmentID).
		Scan(&instructor.ID, &instructor.CreatedAt, &instructor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create instructor: %w", database.TranslateError(err))
	}
	return nil
}

// Update modifies an existing instructor.
func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	const query = `UPDATE instructors
        SET name = $2, email = $3, password_hash = $4, department_id = $5, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query, instructor.ID, instructor.Name, instructor.Email, instructor.PasswordHash, instructor.DepartmentID).
		Scan(&instructor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update instructor: %w", database.TranslateError(err))
	}
	return nil
}

// Delete removes an instructor.
func (r *InstructorRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM instructors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete instructor: %w", database.TranslateError(err))
	}
	return nil
}

// CountCourses reports how many courses the instructor still teaches.
func (r *InstructorRepository) CountCourses(ctx context.Context, id int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM courses WHERE instructor_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count instructor courses: %w", err)
	}
	return count, nil
}

// ListByDepartment returns the instructors of one department.
func (r *InstructorRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]models.Instructor, error) {
	const query = `SELECT id, name, email, password_hash, department_id, created_at, updated_at
        FROM instructors WHERE department_id = $1 ORDER BY id`
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department instructors: %w", err)
	}
	return instructors, nil
}
