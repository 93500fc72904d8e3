package models

import "time"

// Student is a learner registered to a department. The password hash is
// write-only and never serialized, including in nested payloads.
type Student struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Gender         *string   `db:"gender" json:"gender,omitempty"`
	DepartmentID   int64     `db:"department_id" json:"department_id"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the student with its department.
type StudentDetail struct {
	Student
	Department DepartmentRef `db:"department" json:"department"`
}

// StudentRef is the compact student payload embedded in joined responses.
type StudentRef struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// StudentCourseGrade pairs one of the student's enrollments with its course
// and, when graded, the grade.
type StudentCourseGrade struct {
	EnrollmentID int64         `db:"enrollment_id" json:"enrollment_id"`
	Semester     string        `db:"semester" json:"semester"`
	Course       CourseRef     `db:"course" json:"course"`
	Grade        *GradeSummary `json:"grade"`

	// Scan targets for the LEFT JOINed grade row.
	GradeID     *int64   `db:"grade_id" json:"-"`
	GradeValue  *float64 `db:"grade_value" json:"-"`
	GradeLetter *string  `db:"grade_letter" json:"-"`
	Remarks     *string  `db:"grade_remarks" json:"-"`
}
