package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sis-admin-api/internal/models"
	"github.com/noah-isme/sis-admin-api/pkg/database"
	appErrors "github.com/noah-isme/sis-admin-api/pkg/errors"
)

type instructorRepository interface {
	List(ctx context.Context) ([]models.InstructorDetail, error)
	FindByID(ctx context.Context, id int64) (*models.InstructorDetail, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id int64) error
	CountCourses(ctx context.Context, id int64) (int64, error)
}

type departmentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Department, error)
}

type instructorCourseLister interface {
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error)
}

// CreateInstructorRequest holds payload for creating instructors.
type CreateInstructorRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	DepartmentID int64  `json:"department_id" validate:"required"`
}

// UpdateInstructorRequest holds payload for partial instructor updates.
// The password is only re-hashed when supplied.
type UpdateInstructorRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Password     *string `json:"password" validate:"omitempty,min=6"`
	DepartmentID *int64  `json:"department_id"`
}

// InstructorService handles instructor use-cases.
type InstructorService struct {
	repo        instructorRepository
	departments departmentFinder
	courses     instructorCourseLister
	validator   *validator.Validate
	logger      *zap.Logger
	bcryptCost  int
}

// NewInstructorService constructs the instructor service.
func NewInstructorService(
	repo instructorRepository,
	departments departmentFinder,
	courses instructorCourseLister,
	validate *validator.Validate,
	logger *zap.Logger,
	bcryptCost int,
) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &InstructorService{
		repo:        repo,
		departments: departments,
		courses:     courses,
		validator:   validate,
		logger:      logger,
		bcryptCost:  bcryptCost,
	}
}

// List returns all instructors with their department.
func (s *InstructorService) List(ctx context.Context) ([]models.InstructorDetail, error) {
	instructors, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return instructors, nil
}

// Get returns one instructor with its department.
func (s *InstructorService) Get(ctx context.Context, id int64) (*models.InstructorDetail, error) {
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}

// Create registers a new instructor, hashing the supplied password.
func (s *InstructorService) Create(ctx context.Context, req CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid instructor payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate instructor email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "instructor with this email already exists")
	}

	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	instructor := &models.Instructor{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		DepartmentID: req.DepartmentID,
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "instructor with this email already exists")
		case errors.Is(err, database.ErrForeignKey):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}
	return instructor, nil
}

// Update applies a partial update to an instructor.
func (s *InstructorService) Update(ctx context.Context, id int64, req UpdateInstructorRequest) (*models.InstructorDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid instructor payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	instructor := detail.Instructor

	if req.Email != nil && *req.Email != instructor.Email {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate instructor email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		instructor.Email = *req.Email
	}
	if req.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
		instructor.DepartmentID = *req.DepartmentID
	}
	if req.Name != nil {
		instructor.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		instructor.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, &instructor); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor")
	}

	return s.Get(ctx, id)
}

// Delete removes an instructor. Deletion is restricted while courses still
// reference them.
func (s *InstructorService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	courses, err := s.repo.CountCourses(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check instructor courses")
	}
	if courses > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "instructor still teaches courses")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return appErrors.Clone(appErrors.ErrConflict, "instructor still teaches courses")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor")
	}
	return nil
}

// GetCourses lists the courses taught by the instructor.
func (s *InstructorService) GetCourses(ctx context.Context, id int64) ([]models.Course, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	courses, err := s.courses.ListByInstructor(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor courses")
	}
	return courses, nil
}
