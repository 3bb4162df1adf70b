package dto

import "time"

// --- Instructor-facing create/update DTOs ---

type OptionCreateDTO struct {
	Text string `json:"text" binding:"required"`
}

type QuestionCreateDTO struct {
	Text               string            `json:"text" binding:"required"`
	Type               string            `json:"type" binding:"required,oneof=multiple_choice true_false"`
	Options            []OptionCreateDTO `json:"options" binding:"required,min=2,dive"`
	CorrectAnswerIndex *int              `json:"correct_answer_index" binding:"required,min=0"`
	Explanation        string            `json:"explanation,omitempty"`
	Marks              int               `json:"marks" binding:"required,min=1"`
}

type ExamCreateDTO struct {
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description,omitempty"`
	Duration        int                 `json:"duration" binding:"required,min=1"`
	PassingCriteria float64             `json:"passing_criteria" binding:"required,gt=0,lte=100"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// ExamUpdateDTO replaces the exam's metadata and full question list.
type ExamUpdateDTO struct {
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description,omitempty"`
	Duration        int                 `json:"duration" binding:"required,min=1"`
	PassingCriteria float64             `json:"passing_criteria" binding:"required,gt=0,lte=100"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// --- Response DTOs ---

type OptionDTO struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionDTO is the instructor view, answer key included.
type QuestionDTO struct {
	ID                 uint        `json:"id"`
	Text               string      `json:"text"`
	Type               string      `json:"type"`
	Options            []OptionDTO `json:"options"`
	CorrectAnswerIndex int         `json:"correct_answer_index"`
	Explanation        string      `json:"explanation,omitempty"`
	Marks              int         `json:"marks"`
}

// StudentQuestionDTO hides the correct answer and explanation.
type StudentQuestionDTO struct {
	ID      uint        `json:"id"`
	Text    string      `json:"text"`
	Type    string      `json:"type"`
	Options []OptionDTO `json:"options"`
	Marks   int         `json:"marks"`
}

type ExamResponseDTO struct {
	ID              uint          `json:"id"`
	CourseID        uint          `json:"course_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Duration        int           `json:"duration"`
	PassingCriteria float64       `json:"passing_criteria"`
	TotalMarks      int           `json:"total_marks"`
	Questions       []QuestionDTO `json:"questions,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

type StudentExamDTO struct {
	ID              uint                 `json:"id"`
	CourseID        uint                 `json:"course_id"`
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	Duration        int                  `json:"duration"`
	PassingCriteria float64              `json:"passing_criteria"`
	TotalMarks      int                  `json:"total_marks"`
	Questions       []StudentQuestionDTO `json:"questions,omitempty"`
}

type ExamSummaryDTO struct {
	ID            uint      `json:"id"`
	CourseID      uint      `json:"course_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Duration      int       `json:"duration"`
	TotalMarks    int       `json:"total_marks"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}
