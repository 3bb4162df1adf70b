package instructor

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/notification"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	examService service.ExamService
	notifier    notification.Notifier
}

func NewExamController(examService service.ExamService, notifier notification.Notifier) *ExamController {
	return &ExamController{examService: examService, notifier: notifier}
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid "+name+" format"))
		return 0, false
	}
	return uint(val), true
}

func instructorID(ctx *gin.Context) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Query("instructor_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid Instructor ID format"))
		return 0, false
	}
	return uint(val), true
}

func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrCourseNotFound):
		ctx.JSON(http.StatusNotFound, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrNotCourseOwner):
		ctx.JSON(http.StatusForbidden, dto.Fail(err.Error()))
	case errors.Is(err, service.ErrExamValidation):
		ctx.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
	default:
		// Unexpected failures never echo their internals.
		ctx.JSON(http.StatusInternalServerError, dto.Fail("Internal server error"))
	}
}

// CreateExam godoc
// @Summary (Instructor) Create an exam for a course
// @Description Creates an exam with its full question list. Total marks are derived from question marks.
// @Tags Instructor - Exams
// @Accept json
// @Produce json
// @Param course_id path int true "Course ID"
// @Param instructor_id query int true "Instructor ID"
// @Param exam_data body dto.ExamCreateDTO true "Exam definition"
// @Success 201 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /instructor/courses/{course_id}/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	instID, ok := instructorID(ctx)
	if !ok {
		return
	}

	var req dto.ExamCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateExam: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	exam, events, err := c.examService.CreateExam(courseID, instID, req)
	if err != nil {
		log.Error().Err(err).Uint("courseID", courseID).Msg("CreateExam: service error")
		respondError(ctx, err)
		return
	}

	c.notifier.Dispatch(events)
	ctx.JSON(http.StatusCreated, dto.OK("Exam created successfully", exam))
}

// UpdateExam godoc
// @Summary (Instructor) Update an exam
// @Description Replaces the exam's metadata and question list; total marks are recomputed.
// @Tags Instructor - Exams
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param instructor_id query int true "Instructor ID"
// @Param exam_data body dto.ExamUpdateDTO true "Updated exam definition"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /instructor/exams/{exam_id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	instID, ok := instructorID(ctx)
	if !ok {
		return
	}

	var req dto.ExamUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("UpdateExam: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	exam, events, err := c.examService.UpdateExam(examID, instID, req)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("UpdateExam: service error")
		respondError(ctx, err)
		return
	}

	c.notifier.Dispatch(events)
	ctx.JSON(http.StatusOK, dto.OK("Exam updated successfully", exam))
}

// DeleteExam godoc
// @Summary (Instructor) Delete an exam
// @Tags Instructor - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param instructor_id query int true "Instructor ID"
// @Success 200 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /instructor/exams/{exam_id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	instID, ok := instructorID(ctx)
	if !ok {
		return
	}

	events, err := c.examService.DeleteExam(examID, instID)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("DeleteExam: service error")
		respondError(ctx, err)
		return
	}

	c.notifier.Dispatch(events)
	ctx.JSON(http.StatusOK, dto.OK("Exam deleted successfully", nil))
}

// GetExam godoc
// @Summary (Instructor) Get an exam with its answer key
// @Tags Instructor - Exams
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param instructor_id query int true "Instructor ID"
// @Success 200 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /instructor/exams/{exam_id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	examID, ok := parseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	instID, ok := instructorID(ctx)
	if !ok {
		return
	}

	exam, err := c.examService.GetExam(examID, instID)
	if err != nil {
		log.Warn().Err(err).Uint("examID", examID).Msg("GetExam: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Exam retrieved successfully", exam))
}

// ListCourseExams godoc
// @Summary (Instructor) List a course's exams
// @Tags Instructor - Exams
// @Produce json
// @Param course_id path int true "Course ID"
// @Param instructor_id query int true "Instructor ID"
// @Success 200 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /instructor/courses/{course_id}/exams [get]
func (c *ExamController) ListCourseExams(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	instID, ok := instructorID(ctx)
	if !ok {
		return
	}

	exams, err := c.examService.ListCourseExams(courseID, instID)
	if err != nil {
		log.Error().Err(err).Uint("courseID", courseID).Msg("ListCourseExams: service error")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Exams retrieved successfully", exams))
}
