package service

import (
	"errors"
	"fmt"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/notification"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ExamService is the instructor-facing exam authoring surface. Mutations
// return the notification events they produced; the caller dispatches them.
type ExamService interface {
	CreateExam(courseID, instructorID uint, req dto.ExamCreateDTO) (*dto.ExamResponseDTO, []notification.Event, error)
	UpdateExam(examID, instructorID uint, req dto.ExamUpdateDTO) (*dto.ExamResponseDTO, []notification.Event, error)
	DeleteExam(examID, instructorID uint) ([]notification.Event, error)
	GetExam(examID, instructorID uint) (*dto.ExamResponseDTO, error)
	ListCourseExams(courseID, instructorID uint) ([]dto.ExamSummaryDTO, error)
}

type examService struct {
	examRepo   repository.ExamRepository
	courseRepo repository.CourseRepository
}

func NewExamService(examRepo repository.ExamRepository, courseRepo repository.CourseRepository) ExamService {
	return &examService{examRepo: examRepo, courseRepo: courseRepo}
}

func (s *examService) ownedCourse(courseID, instructorID uint) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	if course.InstructorID != instructorID {
		return nil, ErrNotCourseOwner
	}
	return course, nil
}

func buildQuestions(reqs []dto.QuestionCreateDTO) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(reqs))
	for i, qReq := range reqs {
		if qReq.Type == model.QuestionTypeTrueFalse && len(qReq.Options) != 2 {
			return nil, fmt.Errorf("%w: question %d: a true/false question must have exactly 2 options, got %d", ErrExamValidation, i+1, len(qReq.Options))
		}
		if qReq.CorrectAnswerIndex == nil {
			return nil, fmt.Errorf("%w: question %d: correct_answer_index is required", ErrExamValidation, i+1)
		}
		correctIdx := *qReq.CorrectAnswerIndex
		if correctIdx < 0 || correctIdx >= len(qReq.Options) {
			return nil, fmt.Errorf("%w: question %d: correct_answer_index %d is out of range for %d options", ErrExamValidation, i+1, correctIdx, len(qReq.Options))
		}
		options := make([]model.Option, 0, len(qReq.Options))
		for j, oReq := range qReq.Options {
			options = append(options, model.Option{Text: oReq.Text, OrderInQuestion: j + 1})
		}
		questions = append(questions, model.Question{
			Text:               qReq.Text,
			Type:               qReq.Type,
			OrderInExam:        i + 1,
			Options:            options,
			CorrectAnswerIndex: correctIdx,
			Explanation:        qReq.Explanation,
			Marks:              qReq.Marks,
		})
	}
	return questions, nil
}

func (s *examService) CreateExam(courseID, instructorID uint, req dto.ExamCreateDTO) (*dto.ExamResponseDTO, []notification.Event, error) {
	if _, err := s.ownedCourse(courseID, instructorID); err != nil {
		return nil, nil, err
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, nil, err
	}

	exam := model.Exam{
		CourseID:        courseID,
		Title:           req.Title,
		Description:     req.Description,
		Duration:        req.Duration,
		PassingCriteria: req.PassingCriteria,
		Questions:       questions,
	}
	exam.RecomputeTotalMarks()

	if err := s.examRepo.Create(&exam); err != nil {
		log.Error().Err(err).Uint("courseID", courseID).Msg("CreateExam: failed to persist exam")
		return nil, nil, fmt.Errorf("database error creating exam: %w", err)
	}

	created, err := s.examRepo.FindByIDWithQuestions(exam.ID)
	if err != nil {
		log.Error().Err(err).Uint("examID", exam.ID).Msg("CreateExam: failed to reload created exam")
		created = &exam
	}

	resp, err := examToResponseDTO(created)
	if err != nil {
		return nil, nil, err
	}
	return resp, []notification.Event{notification.ExamAdded(courseID, exam.Title)}, nil
}

func (s *examService) UpdateExam(examID, instructorID uint, req dto.ExamUpdateDTO) (*dto.ExamResponseDTO, []notification.Event, error) {
	exam, err := s.examRepo.FindByID(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrExamNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.ownedCourse(exam.CourseID, instructorID); err != nil {
		return nil, nil, err
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, nil, err
	}
	if err := s.examRepo.ReplaceQuestions(examID, questions); err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("UpdateExam: failed to replace questions")
		return nil, nil, fmt.Errorf("database error updating exam questions: %w", err)
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.Duration = req.Duration
	exam.PassingCriteria = req.PassingCriteria
	exam.Questions = questions
	exam.RecomputeTotalMarks()
	exam.Questions = nil // questions already persisted by ReplaceQuestions
	if err := s.examRepo.Update(exam); err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("UpdateExam: failed to persist exam")
		return nil, nil, fmt.Errorf("database error updating exam: %w", err)
	}

	updated, err := s.examRepo.FindByIDWithQuestions(examID)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("UpdateExam: failed to reload updated exam")
		updated = exam
	}

	resp, err := examToResponseDTO(updated)
	if err != nil {
		return nil, nil, err
	}
	return resp, []notification.Event{notification.ExamUpdated(exam.CourseID, exam.Title)}, nil
}

func (s *examService) DeleteExam(examID, instructorID uint) ([]notification.Event, error) {
	exam, err := s.examRepo.FindByID(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCourse(exam.CourseID, instructorID); err != nil {
		return nil, err
	}

	if err := s.examRepo.Delete(examID); err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("DeleteExam: failed to delete exam")
		return nil, fmt.Errorf("database error deleting exam: %w", err)
	}
	return []notification.Event{notification.ExamDeleted(exam.CourseID, exam.Title)}, nil
}

func (s *examService) GetExam(examID, instructorID uint) (*dto.ExamResponseDTO, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCourse(exam.CourseID, instructorID); err != nil {
		return nil, err
	}
	return examToResponseDTO(exam)
}

func (s *examService) ListCourseExams(courseID, instructorID uint) ([]dto.ExamSummaryDTO, error) {
	if _, err := s.ownedCourse(courseID, instructorID); err != nil {
		return nil, err
	}
	return listCourseExamSummaries(s.examRepo, courseID)
}

func listCourseExamSummaries(examRepo repository.ExamRepository, courseID uint) ([]dto.ExamSummaryDTO, error) {
	examsWithCount, err := examRepo.FindByCourseID(courseID)
	if err != nil {
		log.Error().Err(err).Uint("courseID", courseID).Msg("Failed to list exams for course")
		return nil, fmt.Errorf("error fetching exams for course %d: %w", courseID, err)
	}
	dtos := make([]dto.ExamSummaryDTO, 0, len(examsWithCount))
	for _, ewc := range examsWithCount {
		dtos = append(dtos, dto.ExamSummaryDTO{
			ID:            ewc.Exam.ID,
			CourseID:      ewc.Exam.CourseID,
			Title:         ewc.Exam.Title,
			Description:   ewc.Exam.Description,
			Duration:      ewc.Exam.Duration,
			TotalMarks:    ewc.Exam.TotalMarks,
			QuestionCount: ewc.QuestionCount,
			CreatedAt:     ewc.Exam.CreatedAt,
		})
	}
	return dtos, nil
}

func examToResponseDTO(exam *model.Exam) (*dto.ExamResponseDTO, error) {
	var resp dto.ExamResponseDTO
	if err := copier.Copy(&resp, exam); err != nil {
		log.Error().Err(err).Msg("Failed to copy Exam model to ExamResponseDTO")
		return nil, fmt.Errorf("error preparing exam response: %w", err)
	}
	return &resp, nil
}
