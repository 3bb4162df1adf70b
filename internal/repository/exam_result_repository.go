package repository

import (
	"errors"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"gorm.io/gorm"
)

// StudentTotal is one row of the leaderboard aggregation: a student's summed
// best scores across all exams in scope, joined with their display name.
type StudentTotal struct {
	StudentID   uint
	StudentName string
	TotalScore  int
}

type ExamResultRepository interface {
	FindByExamAndStudent(examID, studentID uint) (*model.ExamResult, error)
	// AppendAttempt appends one scored attempt to the (exam, student) result,
	// creating the result row on first submission, and recomputes the derived
	// summary fields from the full history.
	AppendAttempt(examID, studentID uint, totalPoints int, attempt *model.Attempt) (*model.ExamResult, error)
	// AggregateTotals groups all results by student, summing best scores.
	// A nil courseID means global scope. Rows come back sorted descending.
	AggregateTotals(courseID *uint) ([]StudentTotal, error)
}

type examResultRepository struct {
	db *gorm.DB
}

func NewExamResultRepository(db *gorm.DB) ExamResultRepository {
	return &examResultRepository{db: db}
}

func (r *examResultRepository) FindByExamAndStudent(examID, studentID uint) (*model.ExamResult, error) {
	var result model.ExamResult
	err := r.db.
		Preload("Attempts", func(db *gorm.DB) *gorm.DB {
			return db.Order("attempts.completed_at ASC")
		}).
		Preload("Attempts.Answers").
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *examResultRepository) AppendAttempt(examID, studentID uint, totalPoints int, attempt *model.Attempt) (*model.ExamResult, error) {
	var out *model.ExamResult
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var result model.ExamResult
		err := tx.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&result).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// TotalPoints is frozen at result-creation time; later exam edits
			// do not rewrite history.
			result = model.ExamResult{
				ExamID:      examID,
				StudentID:   studentID,
				TotalPoints: totalPoints,
				Status:      model.ResultStatusInProgress,
			}
			if err := tx.Create(&result).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		attempt.ExamResultID = result.ID
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}

		var attempts []model.Attempt
		if err := tx.Where("exam_result_id = ?", result.ID).Order("completed_at ASC").Find(&attempts).Error; err != nil {
			return err
		}

		summary := model.DeriveResultSummary(attempts)
		result.BestScore = summary.BestScore
		result.EarnedPoints = summary.BestScore
		result.Status = summary.Status
		result.Attempts = attempts
		if err := tx.Model(&model.ExamResult{}).Where("id = ?", result.ID).
			Updates(map[string]interface{}{
				"best_score":    result.BestScore,
				"earned_points": result.EarnedPoints,
				"status":        result.Status,
			}).Error; err != nil {
			return err
		}

		out = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *examResultRepository) AggregateTotals(courseID *uint) ([]StudentTotal, error) {
	var rows []StudentTotal
	query := r.db.Model(&model.ExamResult{}).
		Select("exam_results.student_id as student_id, users.name as student_name, SUM(exam_results.best_score) as total_score").
		Joins("JOIN users ON users.id = exam_results.student_id AND users.deleted_at IS NULL").
		Where("exam_results.deleted_at IS NULL")
	if courseID != nil {
		query = query.
			Joins("JOIN exams ON exams.id = exam_results.exam_id AND exams.deleted_at IS NULL").
			Where("exams.course_id = ?", *courseID)
	}
	err := query.
		Group("exam_results.student_id, users.name").
		Order("total_score DESC").
		Scan(&rows).Error
	return rows, err
}
