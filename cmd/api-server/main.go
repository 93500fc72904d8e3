package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sis-admin-api/api/swagger"
	"github.com/noah-isme/sis-admin-api/internal/handler"
	"github.com/noah-isme/sis-admin-api/internal/repository"
	"github.com/noah-isme/sis-admin-api/internal/service"
	"github.com/noah-isme/sis-admin-api/pkg/config"
	"github.com/noah-isme/sis-admin-api/pkg/database"
	"github.com/noah-isme/sis-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sis-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sis-admin-api/pkg/middleware/requestid"
)

// @title SIS Admin API
// @version 1.0.0
// @description Administrative API for the student information system
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			cancel()
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
		cancel()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	instrumented := database.Wrap(db, metrics.ObserveDBQuery)

	departmentRepo := repository.NewDepartmentRepository(instrumented)
	instructorRepo := repository.NewInstructorRepository(instrumented)
	studentRepo := repository.NewStudentRepository(instrumented)
	courseRepo := repository.NewCourseRepository(instrumented)
	enrollmentRepo := repository.NewEnrollmentRepository(instrumented)
	gradeRepo := repository.NewGradeRepository(instrumented)

	departmentSvc := service.NewDepartmentService(departmentRepo, studentRepo, courseRepo, instructorRepo, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, departmentRepo, courseRepo, validate, logr, cfg.BcryptCost)
	studentSvc := service.NewStudentService(studentRepo, departmentRepo, enrollmentRepo, validate, logr, cfg.BcryptCost)
	courseSvc := service.NewCourseService(courseRepo, departmentRepo, instructorRepo, enrollmentRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, gradeRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, enrollmentRepo, studentRepo, courseRepo, validate, logr)
	transcriptSvc := service.NewTranscriptService(studentRepo, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Departments: handler.NewDepartmentHandler(departmentSvc),
		Instructors: handler.NewInstructorHandler(instructorSvc),
		Students:    handler.NewStudentHandler(studentSvc, transcriptSvc),
		Courses:     handler.NewCourseHandler(courseSvc, gradeSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Grades:      handler.NewGradeHandler(gradeSvc),
		Health:      handler.NewHealthHandler(db),
	}, metrics)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}
