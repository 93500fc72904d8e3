package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
	appErrors "github.com/noah-isme/sis-admin-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id int64) error
	CountDependents(ctx context.Context, id int64) (int64, error)
}

type departmentStudentLister interface {
	ListByDepartment(ctx context.Context, departmentID int64) ([]models.Student, error)
}

type departmentCourseLister interface {
	ListByDepartment(ctx context.Context, departmentID int64) ([]models.Course, error)
}

type departmentInstructorLister interface {
	ListByDepartment(ctx context.Context, departmentID int64) ([]models.Instructor, error)
}

// CreateDepartmentRequest holds payload for creating departments.
type CreateDepartmentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Code        string  `json:"code" validate:"required"`
	Description *string `json:"description"`
}

// UpdateDepartmentRequest holds payload for partial department updates.
// Absent fields keep their prior values.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Code        *string `json:"code" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// DepartmentService handles department use-cases.
type DepartmentService struct {
	repo        departmentRepository
	students    departmentStudentLister
	courses     departmentCourseLister
	instructors departmentInstructorLister
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDepartmentService constructs the department service.
func NewDepartmentService(
	repo departmentRepository,
	students departmentStudentLister,
	courses departmentCourseLister,
	instructors departmentInstructorLister,
	validate *validator.Validate,
	logger *zap.Logger,
) *DepartmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{
		repo:        repo,
		students:    students,
		courses:     courses,
		instructors: instructors,
		validator:   validate,
		logger:      logger,
	}
}

// List returns all departments.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Get returns one department.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return department, nil
}

// Create registers a new department.
func (s *DepartmentService) Create(ctx context.Context, req CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid department payload")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate department code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "department with this code already exists")
	}

	department := &models.Department{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, department); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department with this code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return department, nil
}

// Update applies a partial update to a department.
func (s *DepartmentService) Update(ctx context.Context, id int64, req UpdateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid department payload")
	}

	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	if req.Code != nil && *req.Code != department.Code {
		exists, err := s.repo.ExistsByCode(ctx, *req.Code, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate department code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department with this code already exists")
		}
		department.Code = *req.Code
	}
	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Description != nil {
		department.Description = req.Description
	}

	if err := s.repo.Update(ctx, department); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department with this code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}
	return department, nil
}

// Delete removes a department. Deletion is restricted while students,
// courses or instructors still reference it.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	dependents, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department dependents")
	}
	if dependents > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "department still has students, courses or instructors")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return appErrors.Clone(appErrors.ErrConflict, "department still has students, courses or instructors")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}
	return nil
}

// GetStudents lists the department's students.
func (s *DepartmentService) GetStudents(ctx context.Context, id int64) ([]models.Student, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	students, err := s.students.ListByDepartment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department students")
	}
	return students, nil
}

// GetCourses lists the department's courses.
func (s *DepartmentService) GetCourses(ctx context.Context, id int64) ([]models.Course, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	courses, err := s.courses.ListByDepartment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department courses")
	}
	return courses, nil
}

// GetInstructors lists the department's instructors.
func (s *DepartmentService) GetInstructors(ctx context.Context, id int64) ([]models.Instructor, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	instructors, err := s.instructors.ListByDepartment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department instructors")
	}
	return instructors, nil
}
