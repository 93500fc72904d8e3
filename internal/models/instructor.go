package models

import "time"

// Instructor teaches courses within a department. The password hash is
// write-only and never serialized, including in nested payloads.
type Instructor struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DepartmentID int64     `db:"department_id" json:"department_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorDetail joins the instructor with its department.
type InstructorDetail struct {
	Instructor
	Department DepartmentRef `db:"department" json:"department"`
}

// InstructorRef is the compact instructor payload embedded in joined
// responses.
type InstructorRef struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
