package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
)

// DepartmentRepository manages persistence for department records.
type DepartmentRepository struct {
	db *database.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *database.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, name, code, description, created_at, updated_at
        FROM departments ORDER BY id`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindByID fetches a department by ID.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	const query = `SELECT id, name, code, description, created_at, updated_at
        FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// ExistsByCode checks if a department with the given code exists, optionally
// excluding an ID.
func (r *DepartmentRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM departments WHERE code = $1"
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
		return false, fmt.Errorf("check department code: %w", err)
	}
	return true, nil
}

// Create inserts a new department, filling the server-assigned ID and
// timestamps.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	const query = `INSERT INTO departments (name, code, description)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query, department.Name, department.Code, department.Description).
		Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create department: %w", database.TranslateError(err))
	}
	return nil
}

// Update modifies an existing department.
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	const query = `UPDATE departments
        SET name = $2, code = $3, description = $4, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query, department.ID, department.Name, department.Code, department.Description).
		Scan(&department.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update department: %w", database.TranslateError(err))
	}
	return nil
}

// Delete removes a department. The schema restricts deletion while dependent
// rows exist.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete department: %w", database.TranslateError(err))
	}
	return nil
}

// CountDependents reports how many students, courses and instructors still
// reference the department.
func (r *DepartmentRepository) CountDependents(ctx context.Context, id int64) (int64, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students WHERE department_id = $1) +
        (SELECT COUNT(*) FROM courses WHERE department_id = $1) +
        (SELECT COUNT(*) FROM instructors WHERE department_id = $1)`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count department dependents: %w", err)
	}
	return count, nil
}
