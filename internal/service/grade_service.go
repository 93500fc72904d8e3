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

type gradeRepository interface {
	List(ctx context.Context) ([]models.GradeDetail, error)
	FindByID(ctx context.Context, id int64) (*models.GradeDetail, error)
	FindRowByID(ctx context.Context, id int64) (*models.Grade, error)
	ExistsByEnrollment(ctx context.Context, enrollmentID int64) (bool, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id int64) error
	ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.GradeDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.StudentGrade, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.GradeDetail, error)
}

type enrollmentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
}

// CreateGradeRequest holds payload for recording a grade against an
// enrollment. Grade is a pointer so a score of zero counts as supplied.
type CreateGradeRequest struct {
	EnrollmentID int64    `json:"enrollment_id" validate:"required"`
	Grade        *float64 `json:"grade" validate:"required,min=0,max=100"`
	GradeLetter  string   `json:"grade_letter" validate:"required,oneof=A+ A A- B+ B B- C+ C C- D+ D F"`
	Remarks      *string  `json:"remarks"`
}

// UpdateGradeRequest holds payload for partial grade updates.
type UpdateGradeRequest struct {
	Grade       *float64 `json:"grade" validate:"omitempty,min=0,max=100"`
	GradeLetter *string  `json:"grade_letter" validate:"omitempty,oneof=A+ A A- B+ B B- C+ C C- D+ D F"`
	Remarks     *string  `json:"remarks"`
}

// GradeService handles grade use-cases.
type GradeService struct {
	repo        gradeRepository
	enrollments enrollmentFinder
	students    studentFinder
	courses     courseFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(
	repo gradeRepository,
	enrollments enrollmentFinder,
	students studentFinder,
	courses courseFinder,
	validate *validator.Validate,
	logger *zap.Logger,
) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		repo:        repo,
		enrollments: enrollments,
		students:    students,
		courses:     courses,
		validator:   validate,
		logger:      logger,
	}
}

// List returns all grades with their enrollment, student and course.
func (s *GradeService) List(ctx context.Context) ([]models.GradeDetail, error) {
	grades, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Get returns one grade with its enrollment, student and course.
func (s *GradeService) Get(ctx context.Context, id int64) (*models.GradeDetail, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// Create records a grade for an enrollment. At most one grade can exist
// per enrollment.
func (s *GradeService) Create(ctx context.Context, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid grade payload")
	}

	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	exists, err := s.repo.ExistsByEnrollment(ctx, req.EnrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grade")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment already has a grade")
	}

	grade := &models.Grade{
		EnrollmentID: req.EnrollmentID,
		Grade:        *req.Grade,
		GradeLetter:  req.GradeLetter,
		Remarks:      req.Remarks,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment already has a grade")
		case errors.Is(err, database.ErrForeignKey):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	return grade, nil
}

// Update applies a partial update to a grade. The enrollment a grade
// belongs to cannot be changed.
func (s *GradeService) Update(ctx context.Context, id int64, req UpdateGradeRequest) (*models.GradeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "invalid grade payload")
	}

	grade, err := s.repo.FindRowByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}

	if req.Grade != nil {
		grade.Grade = *req.Grade
	}
	if req.GradeLetter != nil {
		grade.GradeLetter = *req.GradeLetter
	}
	if req.Remarks != nil {
		grade.Remarks = req.Remarks
	}

	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return s.Get(ctx, id)
}

// Delete removes a grade.
func (s *GradeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindRowByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

// GetByEnrollment lists the grades recorded against one enrollment.
func (s *GradeService) GetByEnrollment(ctx context.Context, enrollmentID int64) ([]models.GradeDetail, error) {
	if _, err := s.enrollments.FindByID(ctx, enrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	grades, err := s.repo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// GetByStudent lists a student's grades with course and enrollment.
func (s *GradeService) GetByStudent(ctx context.Context, studentID int64) ([]models.StudentGrade, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// GetByCourse lists the grades recorded for one course.
func (s *GradeService) GetByCourse(ctx context.Context, courseID int64) ([]models.GradeDetail, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	grades, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}
