package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Enrollment registers a student to a course for a semester. The
// (student_id, course_id, semester) triple is unique regardless of status.
type Enrollment struct {
	ID             int64            `db:"id" json:"id"`
	StudentID      int64            `db:"student_id" json:"student_id"`
	CourseID       int64            `db:"course_id" json:"course_id"`
	Semester       string           `db:"semester" json:"semester"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail joins the enrollment with its student and course.
type EnrollmentDetail struct {
	Enrollment
	Student StudentRef `db:"student" json:"student"`
	Course  CourseRef  `db:"course" json:"course"`
}

// EnrollmentSummary is the compact enrollment payload embedded in grade
// responses.
type EnrollmentSummary struct {
	ID       int64            `db:"id" json:"id"`
	Semester string           `db:"semester" json:"semester"`
	Status   EnrollmentStatus `db:"status" json:"status"`
}

// StudentEnrollment is an enrollment seen from the student side: joined
// course plus the grade when one has been recorded.
type StudentEnrollment struct {
	Enrollment
	Course CourseRef     `db:"course" json:"course"`
	Grade  *GradeSummary `json:"grade,omitempty"`

	// Scan targets for the LEFT JOINed grade row.
	GradeID     *int64   `db:"grade_id" json:"-"`
	GradeValue  *float64 `db:"grade_value" json:"-"`
	GradeLetter *string  `db:"grade_letter" json:"-"`
	Remarks     *string  `db:"grade_remarks" json:"-"`
}

// CourseEnrollment is an enrollment seen from the course side: joined
// student plus the grade when one has been recorded.
type CourseEnrollment struct {
	Enrollment
	Student StudentRef    `db:"student" json:"student"`
	Grade   *GradeSummary `json:"grade,omitempty"`

	// Scan targets for the LEFT JOINed grade row.
	GradeID     *int64   `db:"grade_id" json:"-"`
	GradeValue  *float64 `db:"grade_value" json:"-"`
	GradeLetter *string  `db:"grade_letter" json:"-"`
	Remarks     *string  `db:"grade_remarks" json:"-"`
}
