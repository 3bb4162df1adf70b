package service

import (
	"errors"
	"testing"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInstructorID uint = 5

func intPtr(v int) *int { return &v }

func validCreateRequest() dto.ExamCreateDTO {
	return dto.ExamCreateDTO{
		Title:           "Go basics",
		Duration:        30,
		PassingCriteria: 50,
		Questions: []dto.QuestionCreateDTO{
			{
				Text:               "What is a goroutine?",
				Type:               model.QuestionTypeMultipleChoice,
				Options:            []dto.OptionCreateDTO{{Text: "A thread"}, {Text: "A lightweight coroutine"}, {Text: "A process"}},
				CorrectAnswerIndex: intPtr(1),
				Marks:              2,
			},
			{
				Text:               "Channels are typed.",
				Type:               model.QuestionTypeTrueFalse,
				Options:            []dto.OptionCreateDTO{{Text: "True"}, {Text: "False"}},
				CorrectAnswerIndex: intPtr(0),
				Marks:              1,
			},
		},
	}
}

func newExamFixture(t *testing.T) (ExamService, *fakeExamRepo) {
	t.Helper()
	examRepo := newFakeExamRepo()
	courseRepo := newFakeCourseRepo(&model.Course{ID: testCourseID, InstructorID: testInstructorID})
	return NewExamService(examRepo, courseRepo), examRepo
}

func TestCreateExam_ComputesTotalMarksAndEmitsEvent(t *testing.T) {
	svc, _ := newExamFixture(t)

	resp, events, err := svc.CreateExam(testCourseID, testInstructorID, validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalMarks, "total marks is the sum of question marks")
	assert.Len(t, resp.Questions, 2)

	require.Len(t, events, 1)
	assert.Equal(t, model.NotificationExamAdded, events[0].Type)
	assert.Equal(t, testCourseID, events[0].CourseID)
	assert.Contains(t, events[0].Message, "Go basics")
}

func TestCreateExam_UnknownCourse(t *testing.T) {
	svc, _ := newExamFixture(t)

	_, _, err := svc.CreateExam(404, testInstructorID, validCreateRequest())
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCreateExam_RejectsNonOwner(t *testing.T) {
	svc, _ := newExamFixture(t)

	_, _, err := svc.CreateExam(testCourseID, 999, validCreateRequest())
	assert.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestCreateExam_RejectsTrueFalseWithWrongOptionCount(t *testing.T) {
	svc, _ := newExamFixture(t)

	req := validCreateRequest()
	req.Questions[1].Options = append(req.Questions[1].Options, dto.OptionCreateDTO{Text: "Maybe"})

	_, _, err := svc.CreateExam(testCourseID, testInstructorID, req)
	assert.ErrorIs(t, err, ErrExamValidation)
	assert.Contains(t, err.Error(), "exactly 2 options")
}

func TestCreateExam_RejectsOutOfRangeAnswerIndex(t *testing.T) {
	svc, _ := newExamFixture(t)

	req := validCreateRequest()
	req.Questions[0].CorrectAnswerIndex = intPtr(3)

	_, _, err := svc.CreateExam(testCourseID, testInstructorID, req)
	assert.ErrorIs(t, err, ErrExamValidation)
	assert.Contains(t, err.Error(), "out of range")
}

func TestCreateExam_RejectsNegativeAnswerIndex(t *testing.T) {
	svc, _ := newExamFixture(t)

	req := validCreateRequest()
	req.Questions[0].CorrectAnswerIndex = intPtr(-1)

	_, _, err := svc.CreateExam(testCourseID, testInstructorID, req)
	assert.ErrorIs(t, err, ErrExamValidation)
	assert.Contains(t, err.Error(), "out of range")
}

func TestCreateExam_RejectsMissingAnswerIndex(t *testing.T) {
	svc, _ := newExamFixture(t)

	req := validCreateRequest()
	req.Questions[0].CorrectAnswerIndex = nil

	_, _, err := svc.CreateExam(testCourseID, testInstructorID, req)
	assert.ErrorIs(t, err, ErrExamValidation)
	assert.Contains(t, err.Error(), "correct_answer_index is required")
}

func TestCreateExam_PersistenceFailureIsNotValidation(t *testing.T) {
	svc, examRepo := newExamFixture(t)
	examRepo.createErr = errors.New("connection refused")

	_, _, err := svc.CreateExam(testCourseID, testInstructorID, validCreateRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExamValidation,
		"infrastructure failures must stay distinguishable from bad definitions")
}

func TestUpdateExam_ReplacesQuestionsAndRecomputesMarks(t *testing.T) {
	svc, _ := newExamFixture(t)

	created, _, err := svc.CreateExam(testCourseID, testInstructorID, validCreateRequest())
	require.NoError(t, err)

	update := dto.ExamUpdateDTO{
		Title:           "Go basics v2",
		Duration:        45,
		PassingCriteria: 60,
		Questions: []dto.QuestionCreateDTO{
			{
				Text:               "What does defer do?",
				Type:               model.QuestionTypeMultipleChoice,
				Options:            []dto.OptionCreateDTO{{Text: "Runs at return"}, {Text: "Runs immediately"}},
				CorrectAnswerIndex: intPtr(0),
				Marks:              5,
			},
		},
	}

	resp, events, err := svc.UpdateExam(created.ID, testInstructorID, update)
	require.NoError(t, err)

	assert.Equal(t, "Go basics v2", resp.Title)
	assert.Equal(t, 5, resp.TotalMarks)
	assert.Len(t, resp.Questions, 1, "updates replace the full question set")

	require.Len(t, events, 1)
	assert.Equal(t, model.NotificationExamUpdated, events[0].Type)
}

func TestUpdateExam_UnknownExam(t *testing.T) {
	svc, _ := newExamFixture(t)

	_, _, err := svc.UpdateExam(404, testInstructorID, dto.ExamUpdateDTO{})
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestDeleteExam_EmitsEventAndRemovesExam(t *testing.T) {
	svc, examRepo := newExamFixture(t)

	created, _, err := svc.CreateExam(testCourseID, testInstructorID, validCreateRequest())
	require.NoError(t, err)

	events, err := svc.DeleteExam(created.ID, testInstructorID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.NotificationExamDeleted, events[0].Type)

	_, err = examRepo.FindByID(created.ID)
	assert.Error(t, err)
}

func TestDeleteExam_RejectsNonOwner(t *testing.T) {
	svc, _ := newExamFixture(t)

	created, _, err := svc.CreateExam(testCourseID, testInstructorID, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.DeleteExam(created.ID, 999)
	assert.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestListCourseExams_IncludesQuestionCount(t *testing.T) {
	svc, _ := newExamFixture(t)

	_, _, err := svc.CreateExam(testCourseID, testInstructorID, validCreateRequest())
	require.NoError(t, err)

	summaries, err := svc.ListCourseExams(testCourseID, testInstructorID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].QuestionCount)
	assert.Equal(t, 3, summaries[0].TotalMarks)
}
