package service

import (
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
)

// ScoredAnswer is the per-question outcome of scoring one submitted answer.
type ScoredAnswer struct {
	QuestionID          uint
	SelectedAnswerIndex int
	IsCorrect           bool
	CorrectAnswerIndex  int
	Explanation         string
	MarksAwarded        int
}

// ScoreReport is the full outcome of scoring one submission.
type ScoreReport struct {
	Score      int
	TotalMarks int
	Passed     bool
	Answers    []ScoredAnswer
}

// ScoreExam grades a submission against the exam definition. Pure computation:
// an answer referencing a question id not in the exam is scored incorrect with
// zero contribution, unanswered questions contribute zero, and there is no
// partial credit or negative marking. A zero-mark exam can never pass.
func ScoreExam(exam *model.Exam, answers []dto.AnswerDTO) ScoreReport {
	questionByID := make(map[uint]model.Question, len(exam.Questions))
	for _, q := range exam.Questions {
		questionByID[q.ID] = q
	}

	report := ScoreReport{TotalMarks: exam.TotalMarks}
	for _, ans := range answers {
		scored := ScoredAnswer{
			QuestionID:          ans.QuestionID,
			SelectedAnswerIndex: ans.SelectedAnswerIndex,
		}
		if q, ok := questionByID[ans.QuestionID]; ok {
			scored.CorrectAnswerIndex = q.CorrectAnswerIndex
			scored.Explanation = q.Explanation
			if ans.SelectedAnswerIndex == q.CorrectAnswerIndex {
				scored.IsCorrect = true
				scored.MarksAwarded = q.Marks
				report.Score += q.Marks
			}
		}
		report.Answers = append(report.Answers, scored)
	}

	if exam.TotalMarks > 0 {
		percentage := float64(report.Score) / float64(exam.TotalMarks) * 100
		report.Passed = percentage >= exam.PassingCriteria
	}
	return report
}
