package model

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	CourseID    uint   `json:"course_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description,omitempty"`
	// Duration is the attempt window in minutes.
	Duration int `json:"duration" gorm:"not null"`
	// PassingCriteria is the pass threshold as a percentage of TotalMarks.
	PassingCriteria float64 `json:"passing_criteria" gorm:"not null"`
	// TotalMarks is derived: the sum of all question marks, recomputed on every save.
	TotalMarks int            `json:"total_marks" gorm:"not null"`
	Questions  []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// RecomputeTotalMarks restores the invariant totalMarks == sum(question.marks).
func (e *Exam) RecomputeTotalMarks() {
	total := 0
	for _, q := range e.Questions {
		total += q.Marks
	}
	e.TotalMarks = total
}

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
)

type Question struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	ExamID             uint           `json:"exam_id" gorm:"not null;index"`
	Text               string         `json:"text" gorm:"type:text;not null"`
	Type               string         `json:"type" gorm:"not null"` // "multiple_choice", "true_false"
	OrderInExam        int            `json:"order_in_exam" gorm:"not null"`
	Options            []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CorrectAnswerIndex int            `json:"correct_answer_index" gorm:"not null"`
	Explanation        string         `json:"explanation,omitempty" gorm:"type:text"`
	Marks              int            `json:"marks" gorm:"not null"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

type Option struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	QuestionID      uint           `json:"question_id" gorm:"not null;index"`
	Text            string         `json:"text" gorm:"not null"`
	OrderInQuestion int            `json:"order_in_question" gorm:"not null"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
