package service

import (
	"errors"
	"fmt"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StudentExamService exposes exams to enrolled students. Access requires an
// enrollment and every module assessment of the course passed (exact
// equality, not a threshold).
type StudentExamService interface {
	ListExams(courseID, studentID uint) ([]dto.ExamSummaryDTO, error)
	GetExam(examID, studentID uint) (*dto.StudentExamDTO, error)
}

type studentExamService struct {
	examRepo       repository.ExamRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewStudentExamService(
	examRepo repository.ExamRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
) StudentExamService {
	return &studentExamService{
		examRepo:       examRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *studentExamService) gate(courseID, studentID uint) error {
	if _, err := s.enrollmentRepo.FindByUserAndCourse(studentID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return err
	}

	total, err := s.courseRepo.CountTotalAssessments(courseID)
	if err != nil {
		return err
	}
	passed, err := s.courseRepo.CountPassedAssessments(courseID, studentID)
	if err != nil {
		return err
	}
	if passed != total {
		log.Info().Uint("courseID", courseID).Uint("studentID", studentID).
			Int64("passed", passed).Int64("total", total).Msg("Prerequisite gate: assessments incomplete")
		return ErrPrerequisitesIncomplete
	}
	return nil
}

func (s *studentExamService) ListExams(courseID, studentID uint) ([]dto.ExamSummaryDTO, error) {
	if _, err := s.courseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if err := s.gate(courseID, studentID); err != nil {
		return nil, err
	}
	return listCourseExamSummaries(s.examRepo, courseID)
}

func (s *studentExamService) GetExam(examID, studentID uint) (*dto.StudentExamDTO, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.gate(exam.CourseID, studentID); err != nil {
		return nil, err
	}
	return examToStudentDTO(exam)
}

// examToStudentDTO strips the answer key and explanations from the exam.
func examToStudentDTO(exam *model.Exam) (*dto.StudentExamDTO, error) {
	var resp dto.StudentExamDTO
	if err := copier.Copy(&resp, exam); err != nil {
		log.Error().Err(err).Msg("Failed to copy Exam model to StudentExamDTO")
		return nil, fmt.Errorf("error preparing exam response: %w", err)
	}
	return &resp, nil
}
