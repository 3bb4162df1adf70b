package student

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/realtime"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	studentExams  service.StudentExamService
	sessions      service.ExamSessionService
	leaderboard   service.LeaderboardService
	notifications service.NotificationService
	coordinator   *realtime.Coordinator
}

func NewExamController(
	studentExams service.StudentExamService,
	sessions service.ExamSessionService,
	leaderboard service.LeaderboardService,
	notifications service.NotificationService,
	coordinator *realtime.Coordinator,
) *ExamController {
	return &ExamController{
		studentExams:  studentExams,
		sessions:      sessions,
		leaderboard:   leaderboard,
		notifications: notifications,
		coordinator:   coordinator,
	}
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid "+name+" format"))
		return 0, false
	}
	return uint(val), true
}

func studentID(ctx *gin.Context) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Query("student_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid Student ID format"))
		return 0, false
	}
	return uint(val), true
}

func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrResultNotFound):
		ctx.JSON(http.StatusNotFound, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrNotEnrolled),
		errors.Is(err, service.ErrPrerequisitesIncomplete):
		ctx.JSON(http.StatusForbidden, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, service.ErrDurationExpired):
		ctx.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
	default:
		ctx.JSON(http.StatusInternalServerError, dto.Fail("Internal server error"))
	}
}

// ListExams godoc
// @Summary (Student) List a course's exams
// @Description Requires enrollment and all course assessments passed.
// @Tags Student - Exams
// @Produce json
// @Param course_id path int true "Course ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /courses/{course_id}/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	exams, err := c.studentExams.ListExams(courseID, sID)
	if err != nil {
		log.Warn().Err(err).Uint("courseID", courseID).Uint("studentID", sID).Msg("ListExams: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Exams retrieved successfully", exams))
}

// GetExam godoc
// @Summary (Student) Get an exam without its answer key
// @Tags Student - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /exams/{exam_id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	exam, err := c.studentExams.GetExam(examID, sID)
	if err != nil {
		log.Warn().Err(err).Uint("examID", examID).Uint("studentID", sID).Msg("GetExam: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Exam retrieved successfully", exam))
}

// StartExam godoc
// @Summary (Student) Start or resume an exam session
// @Description Idempotent: a page reload resumes the cached session without resetting the window.
// @Tags Student - Exam Session
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /exams/{exam_id}/start [post]
func (c *ExamController) StartExam(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	started, err := c.sessions.StartExam(ctx.Request.Context(), examID, sID)
	if err != nil {
		log.Warn().Err(err).Uint("examID", examID).Uint("studentID", sID).Msg("StartExam: service error")
		respondError(ctx, err)
		return
	}

	c.coordinator.ArmAutoSubmit(examID, sID, time.Duration(started.RemainingSeconds)*time.Second)
	ctx.JSON(http.StatusOK, dto.OK("Exam started", started))
}

// SaveProgress godoc
// @Summary (Student) Autosave in-flight answers
// @Tags Student - Exam Session
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param student_id query int true "Student ID"
// @Param progress body dto.SaveProgressDTO true "Current answers"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /exams/{exam_id}/progress [post]
func (c *ExamController) SaveProgress(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	var req dto.SaveProgressDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	session, err := c.sessions.SaveProgress(ctx.Request.Context(), examID, sID, req.Answers)
	if err != nil {
		log.Warn().Err(err).Uint("examID", examID).Uint("studentID", sID).Msg("SaveProgress: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Progress saved", session))
}

// GetProgress godoc
// @Summary (Student) Read the cached session
// @Description Returns empty progress rather than an error when no session exists.
// @Tags Student - Exam Session
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /exams/{exam_id}/progress [get]
func (c *ExamController) GetProgress(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	session, err := c.sessions.GetProgress(ctx.Request.Context(), examID, sID)
	if err != nil {
		log.Warn().Err(err).Uint("examID", examID).Uint("studentID", sID).Msg("GetProgress: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Progress retrieved", session))
}

// SubmitExam godoc
// @Summary (Student) Submit the exam for scoring
// @Description Cancels the pending auto-submit timer, scores the answers and appends an attempt.
// @Tags Student - Exam Session
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param student_id query int true "Student ID"
// @Param submission body dto.SubmitExamDTO true "Final answers"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /exams/{exam_id}/submit [post]
func (c *ExamController) SubmitExam(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	var req dto.SubmitExamDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	// Cancel before acting: once the manual path is committed, the timer
	// must not fire a second submission for the same sitting.
	c.coordinator.CancelAutoSubmit(examID, sID)

	result, err := c.sessions.SubmitExam(ctx.Request.Context(), examID, sID, req.Answers, false)
	if err != nil {
		log.Warn().Err(err).Uint("examID", examID).Uint("studentID", sID).Msg("SubmitExam: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Exam submitted successfully", result))
}

// GetResult godoc
// @Summary (Student) Get the attempt history for an exam
// @Tags Student - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /exams/{exam_id}/result [get]
func (c *ExamController) GetResult(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	result, err := c.sessions.GetResult(ctx.Request.Context(), examID, sID)
	if err != nil {
		log.Warn().Err(err).Uint("examID", examID).Uint("studentID", sID).Msg("GetResult: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Result retrieved successfully", result))
}

// GetNotifications godoc
// @Summary (Student) List own notifications
// @Description Exam lifecycle notifications for the student's courses, newest first.
// @Tags Student - Notifications
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} dto.Response
// @Router /notifications [get]
func (c *ExamController) GetNotifications(ctx *gin.Context) {
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	notifications, err := c.notifications.ListUserNotifications(sID)
	if err != nil {
		log.Error().Err(err).Uint("studentID", sID).Msg("GetNotifications: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Notifications retrieved successfully", notifications))
}

// GetLeaderboard godoc
// @Summary Leaderboard of students by total best score
// @Description Dense-ranked; optionally scoped to one course with ?course_id=.
// @Tags Leaderboard
// @Produce json
// @Param course_id query int false "Course ID"
// @Param limit query int false "Max entries (default 10)"
// @Success 200 {object} dto.Response
// @Router /leaderboard [get]
func (c *ExamController) GetLeaderboard(ctx *gin.Context) {
	var courseID *uint
	if raw := ctx.Query("course_id"); raw != "" {
		val, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid Course ID format"))
			return
		}
		id := uint(val)
		courseID = &id
	}

	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val < 1 {
			ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid limit"))
			return
		}
		limit = val
	}

	entries, err := c.leaderboard.GetLeaderboard(ctx.Request.Context(), courseID, limit)
	if err != nil {
		log.Error().Err(err).Msg("GetLeaderboard: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Leaderboard retrieved successfully", entries))
}

// GetMyRank godoc
// @Summary (Student) Own rank in the leaderboard
// @Description Returns null data when the student has no scored results in scope.
// @Tags Leaderboard
// @Produce json
// @Param student_id query int true "Student ID"
// @Param course_id query int false "Course ID"
// @Success 200 {object} dto.Response
// @Router /leaderboard/rank [get]
func (c *ExamController) GetMyRank(ctx *gin.Context) {
	sID, ok := studentID(ctx)
	if !ok {
		return
	}

	var courseID *uint
	if raw := ctx.Query("course_id"); raw != "" {
		val, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid Course ID format"))
			return
		}
		id := uint(val)
		courseID = &id
	}

	entry, err := c.leaderboard.GetStudentRank(ctx.Request.Context(), sID, courseID)
	if err != nil {
		log.Error().Err(err).Uint("studentID", sID).Msg("GetMyRank: service error")
		respondError(ctx, err)
		return
	}
	if entry == nil {
		ctx.JSON(http.StatusOK, dto.OK("No scored results yet", nil))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Rank retrieved successfully", entry))
}
