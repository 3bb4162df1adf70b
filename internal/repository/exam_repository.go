package repository

import (
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(exam *model.Exam) error
	Update(exam *model.Exam) error
	Delete(id uint) error
	FindByID(id uint) (*model.Exam, error)
	FindByIDWithQuestions(id uint) (*model.Exam, error)
	FindByCourseID(courseID uint) ([]ExamWithQuestionCount, error)
	ReplaceQuestions(examID uint, questions []model.Question) error
}

type ExamWithQuestionCount struct {
	model.Exam
	QuestionCount int
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	// Creates associated questions and options in the same insert.
	return r.db.Create(exam).Error
}

func (r *examRepository) Update(exam *model.Exam) error {
	return r.db.Save(exam).Error
}

func (r *examRepository) Delete(id uint) error {
	return r.db.Delete(&model.Exam{}, id).Error
}

func (r *examRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_in_exam ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order_in_question ASC")
		}).
		First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByCourseID(courseID uint) ([]ExamWithQuestionCount, error) {
	var results []ExamWithQuestionCount
	err := r.db.Model(&model.Exam{}).
		Select("exams.*, (SELECT COUNT(*) FROM questions WHERE questions.exam_id = exams.id AND questions.deleted_at IS NULL) as question_count").
		Where("exams.course_id = ?", courseID).
		Order("exams.created_at ASC").
		Scan(&results).Error
	return results, err
}

// ReplaceQuestions swaps the exam's entire question set in one transaction.
// Instructor edits always send the full list, so a wholesale replace keeps
// the ordering and option rows consistent.
func (r *examRepository) ReplaceQuestions(examID uint, questions []model.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []model.Question
		if err := tx.Where("exam_id = ?", examID).Find(&existing).Error; err != nil {
			return err
		}
		for _, q := range existing {
			if err := tx.Where("question_id = ?", q.ID).Delete(&model.Option{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].ExamID = examID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
