package models

import "time"

// GradeLetters is the fixed set of accepted letter grades.
var GradeLetters = []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "F"}

// Grade records the result of one enrollment. At most one grade exists per
// enrollment; the numeric grade stays within [0,100].
type Grade struct {
	ID           int64     `db:"id" json:"id"`
	EnrollmentID int64     `db:"enrollment_id" json:"enrollment_id"`
	Grade        float64   `db:"grade" json:"grade"`
	GradeLetter  string    `db:"grade_letter" json:"grade_letter"`
	Remarks      *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GradeSummary is the compact grade payload embedded in enrollment
// responses.
type GradeSummary struct {
	ID          int64   `db:"id" json:"id"`
	Grade       float64 `db:"grade" json:"grade"`
	GradeLetter string  `db:"grade_letter" json:"grade_letter"`
	Remarks     *string `db:"remarks" json:"remarks,omitempty"`
}

// GradeDetail joins the grade with its enrollment, student and course.
type GradeDetail struct {
	Grade
	Enrollment EnrollmentSummary `db:"enrollment" json:"enrollment"`
	Student    StudentRef        `db:"student" json:"student"`
	Course     CourseRef         `db:"course" json:"course"`
}

// StudentGrade is a grade seen from the student side, paired with the
// enrollment's course and a compact enrollment summary.
type StudentGrade struct {
	Grade
	Course     CourseRef         `db:"course" json:"course"`
	Enrollment EnrollmentSummary `db:"enrollment" json:"enrollment"`
}
