package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Meghna-Anilkumar/eduzest-backend/config"
	"github.com/Meghna-Anilkumar/eduzest-backend/database"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/cache"
	instructorctrl "github.com/Meghna-Anilkumar/eduzest-backend/internal/controller/instructor"
	studentctrl "github.com/Meghna-Anilkumar/eduzest-backend/internal/controller/student"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/logger"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/notification"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/realtime"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/repository"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Eduzest Exam API
// @version 1.0
// @description Backend for timed exams: sessions, scoring, results and leaderboards.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // *gorm.DB
			cache.NewRedisClient,
			cache.NewRedisCache,
			NewGinEngine,
		),

		// Repositories
		fx.Provide(
			repository.NewExamRepository,
			repository.NewExamResultRepository,
			repository.NewEnrollmentRepository,
			repository.NewCourseRepository,
			repository.NewNotificationRepository,
		),

		// Services
		fx.Provide(
			notification.NewNotifier,
			service.NewExamService,
			service.NewStudentExamService,
			service.NewExamSessionService,
			service.NewLeaderboardService,
			service.NewNotificationService,
		),

		// Realtime: timer registry, auto-submit coordinator, websocket hub
		fx.Provide(
			realtime.NewTimerRegistry,
			realtime.NewCoordinator,
			realtime.NewHub,
		),

		// Controllers
		fx.Provide(
			instructorctrl.NewExamController,
			studentctrl.NewExamController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer wires API routes and manages the HTTP server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	hub *realtime.Hub,
	instructorExamCtrl *instructorctrl.ExamController,
	studentExamCtrl *studentctrl.ExamController,
) {
	instructorAPI := router.Group("/api/v1/instructor")
	{
		instructorAPI.POST("/courses/:course_id/exams", instructorExamCtrl.CreateExam)
		instructorAPI.GET("/courses/:course_id/exams", instructorExamCtrl.ListCourseExams)
		instructorAPI.GET("/exams/:exam_id", instructorExamCtrl.GetExam)
		instructorAPI.PUT("/exams/:exam_id", instructorExamCtrl.UpdateExam)
		instructorAPI.DELETE("/exams/:exam_id", instructorExamCtrl.DeleteExam)
	}

	studentAPI := router.Group("/api/v1")
	{
		studentAPI.GET("/courses/:course_id/exams", studentExamCtrl.ListExams)
		studentAPI.GET("/exams/:exam_id", studentExamCtrl.GetExam)
		studentAPI.POST("/exams/:exam_id/start", studentExamCtrl.StartExam)
		studentAPI.POST("/exams/:exam_id/progress", studentExamCtrl.SaveProgress)
		studentAPI.GET("/exams/:exam_id/progress", studentExamCtrl.GetProgress)
		studentAPI.POST("/exams/:exam_id/submit", studentExamCtrl.SubmitExam)
		studentAPI.GET("/exams/:exam_id/result", studentExamCtrl.GetResult)

		studentAPI.GET("/notifications", studentExamCtrl.GetNotifications)

		studentAPI.GET("/leaderboard", studentExamCtrl.GetLeaderboard)
		studentAPI.GET("/leaderboard/rank", studentExamCtrl.GetMyRank)
	}

	// Realtime exam channel
	router.GET("/ws/exams/:exam_id", hub.HandleConnection)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Eduzest exam API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.Assessment{},
		&model.AssessmentResult{},
		&model.Exam{},
		&model.Question{},
		&model.Option{},
		&model.ExamResult{},
		&model.Attempt{},
		&model.AttemptAnswer{},
		&model.Notification{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
