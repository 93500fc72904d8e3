package models

import "time"

// Course is offered by a department and taught by an instructor. Code is
// unique across courses; credits stay within [1,6].
type Course struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	Credits      int       `db:"credits" json:"credits"`
	DepartmentID int64     `db:"department_id" json:"department_id"`
	InstructorID int64     `db:"instructor_id" json:"instructor_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail joins the course with its department and instructor.
type CourseDetail struct {
	Course
	Department DepartmentRef `db:"department" json:"department"`
	Instructor InstructorRef `db:"instructor" json:"instructor"`
}

// CourseRef is the compact course payload embedded in joined responses.
type CourseRef struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Code    string `db:"code" json:"code"`
	Credits int    `db:"credits" json:"credits"`
}
