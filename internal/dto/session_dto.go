package dto

import "time"

// AnswerDTO is one submitted answer: which option the student picked
// for which question. An index of 0 is a valid selection.
type AnswerDTO struct {
	QuestionID          uint `json:"question_id" binding:"required"`
	SelectedAnswerIndex int  `json:"selected_answer_index" binding:"min=0"`
}

type SaveProgressDTO struct {
	Answers []AnswerDTO `json:"answers" binding:"dive"`
}

type SubmitExamDTO struct {
	Answers []AnswerDTO `json:"answers" binding:"dive"`
}

// SessionDTO mirrors the cached session verbatim.
type SessionDTO struct {
	StartTime   time.Time   `json:"start_time"`
	Answers     []AnswerDTO `json:"answers"`
	IsSubmitted bool        `json:"is_submitted"`
	Active      bool        `json:"active"`
}

// StartExamDTO is returned by start: the (possibly resumed) session plus the
// countdown the client should render. RemainingSeconds is also what the timer
// coordinator arms with, so a resumed session never gets a fresh window.
type StartExamDTO struct {
	Session          SessionDTO `json:"session"`
	Duration         int        `json:"duration"` // minutes
	RemainingSeconds int        `json:"remaining_seconds"`
}

// ScoredAnswerDTO carries per-question correctness plus the explanation
// revealed after submission.
type ScoredAnswerDTO struct {
	QuestionID          uint   `json:"question_id"`
	SelectedAnswerIndex int    `json:"selected_answer_index"`
	IsCorrect           bool   `json:"is_correct"`
	CorrectAnswerIndex  int    `json:"correct_answer_index"`
	Explanation         string `json:"explanation,omitempty"`
	MarksAwarded        int    `json:"marks_awarded"`
}

type SubmitResultDTO struct {
	Score       int               `json:"score"`
	TotalPoints int               `json:"total_points"`
	Passed      bool              `json:"passed"`
	Attempts    int               `json:"attempts"`
	Status      string            `json:"status"`
	Answers     []ScoredAnswerDTO `json:"answers"`
}

// AttemptDTO summarizes one scored submission in the result history.
type AttemptDTO struct {
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completed_at"`
}

type ExamResultDTO struct {
	ExamID       uint         `json:"exam_id"`
	StudentID    uint         `json:"student_id"`
	TotalPoints  int          `json:"total_points"`
	BestScore    int          `json:"best_score"`
	EarnedPoints int          `json:"earned_points"`
	Status       string       `json:"status"`
	Attempts     []AttemptDTO `json:"attempts"`
}
