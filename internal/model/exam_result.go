package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ResultStatusInProgress = "inProgress"
	ResultStatusFailed     = "failed"
	ResultStatusPassed     = "passed"
)

// ExamResult is the durable attempt history of one student on one exam.
// Exactly one row exists per (exam, student) pair; submissions append Attempts.
type ExamResult struct {
	ID        uint `gorm:"primarykey" json:"id"`
	ExamID    uint `json:"exam_id" gorm:"not null;index;uniqueIndex:idx_exam_result_pair"`
	StudentID uint `json:"student_id" gorm:"not null;index;uniqueIndex:idx_exam_result_pair"`
	Student   User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	// TotalPoints is the exam's TotalMarks captured when the result row is created.
	TotalPoints int `json:"total_points" gorm:"not null"`
	// BestScore, EarnedPoints and Status are derived from the full attempt
	// history on every append; see DeriveResultSummary.
	BestScore    int            `json:"best_score" gorm:"not null;default:0"`
	EarnedPoints int            `json:"earned_points" gorm:"not null;default:0"`
	Status       string         `json:"status" gorm:"not null;default:'inProgress'"` // "inProgress", "failed", "passed"
	Attempts     []Attempt      `json:"attempts,omitempty" gorm:"foreignKey:ExamResultID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type Attempt struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	ExamResultID uint            `json:"exam_result_id" gorm:"not null;index"`
	Score        int             `json:"score" gorm:"not null"`
	Passed       bool            `json:"passed" gorm:"not null"`
	CompletedAt  time.Time       `json:"completed_at" gorm:"not null"`
	Answers      []AttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

type AttemptAnswer struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	AttemptID           uint           `json:"attempt_id" gorm:"not null;index"`
	QuestionID          uint           `json:"question_id" gorm:"not null"`
	SelectedAnswerIndex int            `json:"selected_answer_index" gorm:"not null"`
	IsCorrect           bool           `json:"is_correct" gorm:"not null"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// ResultSummary is the derived view of an attempt history.
type ResultSummary struct {
	BestScore int
	Status    string
}

// DeriveResultSummary recomputes the derived result fields from scratch.
// A later failing attempt can never downgrade a result that already passed.
func DeriveResultSummary(attempts []Attempt) ResultSummary {
	summary := ResultSummary{Status: ResultStatusInProgress}
	if len(attempts) == 0 {
		return summary
	}
	summary.Status = ResultStatusFailed
	for _, a := range attempts {
		if a.Score > summary.BestScore {
			summary.BestScore = a.Score
		}
		if a.Passed {
			summary.Status = ResultStatusPassed
		}
	}
	return summary
}
