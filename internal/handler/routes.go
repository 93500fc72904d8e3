package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sis-admin-api/internal/middleware"
	"github.com/noah-isme/sis-admin-api/internal/service"
	appErrors "github.com/noah-isme/sis-admin-api/pkg/errors"
	"github.com/noah-isme/sis-admin-api/pkg/response"
)

// Handlers bundles the API handlers wired by RegisterRoutes.
type Handlers struct {
	Departments *DepartmentHandler
	Instructors *InstructorHandler
	Students    *StudentHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Grades      *GradeHandler
	Health      *HealthHandler
}

// RegisterRoutes mounts the API under prefix plus the system endpoints at
// the root.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, metrics *service.MetricsService) {
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := r.Group(prefix)
	if metrics != nil {
		api.Use(middleware.Metrics(metrics))
	}

	departments := api.Group("/departments")
	{
		departments.GET("", h.Departments.List)
		departments.POST("", h.Departments.Create)
		departments.GET("/:id", h.Departments.Get)
		departments.PUT("/:id", h.Departments.Update)
		departments.DELETE("/:id", h.Departments.Delete)
		departments.GET("/:id/students", h.Departments.Students)
		departments.GET("/:id/courses", h.Departments.Courses)
		departments.GET("/:id/instructors", h.Departments.Instructors)
	}

	instructors := api.Group("/instructors")
	{
		instructors.GET("", h.Instructors.List)
		instructors.POST("", h.Instructors.Create)
		instructors.GET("/:id", h.Instructors.Get)
		instructors.PUT("/:id", h.Instructors.Update)
		instructors.DELETE("/:id", h.Instructors.Delete)
		instructors.GET("/:id/courses", h.Instructors.Courses)
	}

	students := api.Group("/students")
	{
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
		students.GET("/:id/enrollments", h.Students.Enrollments)
		students.GET("/:id/grades", h.Students.Grades)
		students.GET("/:id/transcript", h.Students.Transcript)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", h.Courses.List)
		courses.POST("", h.Courses.Create)
		courses.GET("/:id", h.Courses.Get)
		courses.PUT("/:id", h.Courses.Update)
		courses.DELETE("/:id", h.Courses.Delete)
		courses.GET("/:id/enrollments", h.Courses.Enrollments)
		courses.GET("/:id/grades", h.Courses.Grades)
	}

	enrollments := api.Group("/enrollments")
	{
		enrollments.GET("", h.Enrollments.List)
		enrollments.POST("", h.Enrollments.Create)
		enrollments.GET("/student/:studentId", h.Enrollments.ByStudent)
		enrollments.GET("/course/:courseId", h.Enrollments.ByCourse)
		enrollments.GET("/:id", h.Enrollments.Get)
		enrollments.PUT("/:id", h.Enrollments.UpdateStatus)
		enrollments.DELETE("/:id", h.Enrollments.Delete)
	}

	grades := api.Group("/grades")
	{
		grades.GET("", h.Grades.List)
		grades.POST("", h.Grades.Create)
		grades.GET("/enrollment/:enrollmentId", h.Grades.ByEnrollment)
		grades.GET("/student/:studentId", h.Grades.ByStudent)
		grades.GET("/:id", h.Grades.Get)
		grades.PUT("/:id", h.Grades.Update)
		grades.DELETE("/:id", h.Grades.Delete)
	}
}
