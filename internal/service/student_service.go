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

type studentRepository interface {
	List(ctx context.Context) ([]models.StudentDetail, error)
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	CountEnrollments(ctx context.Context, id int64) (int64, error)
	ListCourseGrades(ctx context.Context, studentID int64) ([]models.StudentCourseGrade, error)
}

type studentEnrollmentLister interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.StudentEnrollment, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DepartmentID int64   `json:"department_id" validate:"required"`
}

// UpdateStudentRequest holds payload for partial student updates. The
// password is only re-hashed when supplied.
type UpdateStudentRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Password     *string `json:"password" validate:"omitempty,min=6"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DepartmentID *int64  `json:"department_id"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo        studentRepository
	departments departmentFinder
	enrollments studentEnrollmentLister
	validator   *validator.Validate
	logger      *zap.Logger
	bcryptCost  int
}

// NewStudentService constructs the student service.
func NewStudentService(
	repo studentRepository,
	departments departmentFinder,
	enrollments studentEnrollmentLister,
	validate *validator.Validate,
	logger *zap.Logger,
	bcryptCost int,
) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &StudentService{
		repo:        repo,
		departments: departments,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger,
		bcryptCost:  bcryptCost,
	}
}

// List returns all students with their department.
func (s *StudentService) List(ctx context.Context) ([]models.StudentDetail, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one student with its department.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student, hashing the supplied password. The
// enrollment date is server-assigned.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid student payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student with this email already exists")
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

	student := &models.Student{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Gender:       req.Gender,
		DepartmentID: req.DepartmentID,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "student with this email already exists")
		case errors.Is(err, database.ErrForeignKey):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update applies a partial update to a student.
func (s *StudentService) Update(ctx context.Context, id int64, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid student payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student := detail.Student

	if req.Email != nil && *req.Email != student.Email {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		student.Email = *req.Email
	}
	if req.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
		}
		student.DepartmentID = *req.DepartmentID
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Gender != nil {
		student.Gender = req.Gender
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		student.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, &student); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	return s.Get(ctx, id)
}

// Delete removes a student. Deletion is restricted while enrollments still
// reference them.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	enrollments, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student enrollments")
	}
	if enrollments > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "student still has enrollments")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return appErrors.Clone(appErrors.ErrConflict, "student still has enrollments")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

// GetEnrollments lists the student's enrollments with their course.
func (s *StudentService) GetEnrollments(ctx context.Context, id int64) ([]models.StudentEnrollment, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student enrollments")
	}
	return enrollments, nil
}

// GetGrades pairs each of the student's enrollments with its course and
// grade, when one has been recorded.
func (s *StudentService) GetGrades(ctx context.Context, id int64) ([]models.StudentCourseGrade, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	grades, err := s.repo.ListCourseGrades(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student grades")
	}
	return grades, nil
}
