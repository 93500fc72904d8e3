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

type courseRepository interface {
	List(ctx context.Context) ([]models.CourseDetail, error)
	FindByID(ctx context.Context, id int64) (*models.CourseDetail, error)
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
	CountEnrollments(ctx context.Context, id int64) (int64, error)
}

type instructorFinder interface {
	FindByID(ctx context.Context, id int64) (*models.InstructorDetail, error)
}

type courseEnrollmentLister interface {
	ListByCourse(ctx context.Context, courseID int64) ([]models.CourseEnrollment, error)
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Name         string `json:"name" validate:"required"`
	Code         string `json:"code" validate:"required"`
	Credits      int    `json:"credits" validate:"required,min=1,max=6"`
	DepartmentID int64  `json:"department_id" validate:"required"`
	InstructorID int64  `json:"instructor_id" validate:"required"`
}

// UpdateCourseRequest holds payload for partial course updates.
type UpdateCourseRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Code         *string `json:"code" validate:"omitempty,min=1"`
	Credits      *int    `json:"credits" validate:"omitempty,min=1,max=6"`
	DepartmentID *int64  `json:"department_id"`
	InstructorID *int64  `json:"instructor_id"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo        courseRepository
	departments departmentFinder
	instructors instructorFinder
	enrollments courseEnrollmentLister
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(
	repo courseRepository,
	departments departmentFinder,
	instructors instructorFinder,
	enrollments courseEnrollmentLister,
	validate *validator.Validate,
	logger *zap.Logger,
) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:        repo,
		departments: departments,
		instructors: instructors,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger,
	}
}

// List returns all courses with their department and instructor.
func (s *CourseService) List(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns one course with its department and instructor.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create registers a new course after checking code uniqueness and that
// both referenced records exist.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid course payload")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course with this code already exists")
	}

	if _, err := s.departments.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	if _, err := s.instructors.FindByID(ctx, req.InstructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	course := &models.Course{
		Name:         req.Name,
		Code:         req.Code,
		Credits:      req.Credits,
		DepartmentID: req.DepartmentID,
		InstructorID: req.InstructorID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "course with this code already exists")
		case errors.Is(err, database.ErrForeignKey):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department or instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update applies a partial update to a course.
func (s *CourseService) Update(ctx context.Context, id int64, req UpdateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid course payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course := detail.Course

	if req.Code != nil && *req.Code != course.Code {
		exists, err := s.repo.ExistsByCode(ctx, *req.Code, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course code already in use")
		}
		course.Code = *req.Code
	}
	if req.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
		course.DepartmentID = *req.DepartmentID
	}
	if req.InstructorID != nil {
		if _, err := s.instructors.FindByID(ctx, *req.InstructorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
		}
		course.InstructorID = *req.InstructorID
	}
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}

	if err := s.repo.Update(ctx, &course); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	return s.Get(ctx, id)
}

// Delete removes a course. Deletion is restricted while enrollments still
// reference it.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	enrollments, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course enrollments")
	}
	if enrollments > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "course still has enrollments")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return appErrors.Clone(appErrors.ErrConflict, "course still has enrollments")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

// GetEnrollments lists the course's enrollments with their student.
func (s *CourseService) GetEnrollments(ctx context.Context, id int64) ([]models.CourseEnrollment, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course enrollments")
	}
	return enrollments, nil
}
