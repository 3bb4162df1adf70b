package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/cache"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testExamID    uint = 1
	testCourseID  uint = 7
	testStudentID uint = 42
)

func newSessionFixture(t *testing.T) (ExamSessionService, *fakeCache, *fakeResultRepo) {
	t.Helper()
	exam := threeQuestionExam()
	exam.ID = testExamID
	exam.CourseID = testCourseID

	enrollments := newFakeEnrollmentRepo()
	enrollments.enroll(testStudentID, testCourseID)

	c := newFakeCache()
	results := newFakeResultRepo()
	svc := NewExamSessionService(newFakeExamRepo(exam), results, enrollments, c)
	return svc, c, results
}

func TestStartExam_CreatesSessionWithGraceTTL(t *testing.T) {
	svc, c, _ := newSessionFixture(t)
	ctx := context.Background()

	started, err := svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)

	assert.Equal(t, 30, started.Duration)
	assert.Equal(t, 30*60, started.RemainingSeconds)
	assert.True(t, started.Session.Active)
	assert.Empty(t, started.Session.Answers)

	progressKey := cache.ExamProgressKey(testExamID, testStudentID)
	startKey := cache.ExamStartTimeKey(testExamID, testStudentID)
	assert.True(t, c.has(progressKey))
	assert.True(t, c.has(startKey))
	assert.Equal(t, 30*time.Minute+60*time.Second, c.ttl(progressKey))
	assert.Equal(t, 30*time.Minute+60*time.Second, c.ttl(startKey))
}

func TestStartExam_IsIdempotent(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	ctx := context.Background()

	first, err := svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)

	second, err := svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)

	assert.Equal(t, first.Session.StartTime, second.Session.StartTime,
		"a duplicate start must resume, not reset the window")
	assert.LessOrEqual(t, second.RemainingSeconds, first.RemainingSeconds)
}

func TestStartExam_RequiresEnrollment(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, err := svc.StartExam(context.Background(), testExamID, 999)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestStartExam_UnknownExam(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, err := svc.StartExam(context.Background(), 404, testStudentID)
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestSaveProgress_WithoutSession(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, err := svc.SaveProgress(context.Background(), testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 1, SelectedAnswerIndex: 0},
	})
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestSaveProgress_OverwritesAnswersAndRewritesBareTTL(t *testing.T) {
	svc, c, _ := newSessionFixture(t)
	ctx := context.Background()

	_, err := svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)

	_, err = svc.SaveProgress(ctx, testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 1, SelectedAnswerIndex: 0},
		{QuestionID: 2, SelectedAnswerIndex: 1},
	})
	require.NoError(t, err)

	saved, err := svc.SaveProgress(ctx, testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 2, SelectedAnswerIndex: 2},
	})
	require.NoError(t, err)

	require.Len(t, saved.Answers, 1, "autosave replaces the answer set, it does not merge")
	assert.Equal(t, uint(2), saved.Answers[0].QuestionID)
	assert.Equal(t, 2, saved.Answers[0].SelectedAnswerIndex)

	// Autosaves rewrite the TTL without the start grace.
	progressKey := cache.ExamProgressKey(testExamID, testStudentID)
	assert.Equal(t, 30*time.Minute, c.ttl(progressKey))
}

func TestSubmitExam_ManualWithoutSession(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, err := svc.SubmitExam(context.Background(), testExamID, testStudentID, nil, false)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestSubmitExam_ManualAfterExpiry(t *testing.T) {
	svc, c, results := newSessionFixture(t)
	ctx := context.Background()

	// Simulate a session whose window closed 31 minutes after start.
	stale := time.Now().UTC().Add(-31 * time.Minute)
	startKey := cache.ExamStartTimeKey(testExamID, testStudentID)
	require.NoError(t, c.Set(ctx, startKey, stale.Format(time.RFC3339Nano), time.Minute))

	_, err := svc.SubmitExam(ctx, testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 1, SelectedAnswerIndex: 0},
	}, false)
	assert.ErrorIs(t, err, ErrDurationExpired)

	_, err = results.FindByExamAndStudent(testExamID, testStudentID)
	assert.Error(t, err, "an expired manual submission must not record an attempt")
}

func TestSubmitExam_AutoSubmitBypassesExpiryCheck(t *testing.T) {
	svc, c, _ := newSessionFixture(t)
	ctx := context.Background()

	stale := time.Now().UTC().Add(-31 * time.Minute)
	startKey := cache.ExamStartTimeKey(testExamID, testStudentID)
	require.NoError(t, c.Set(ctx, startKey, stale.Format(time.RFC3339Nano), time.Minute))

	result, err := svc.SubmitExam(ctx, testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 3, SelectedAnswerIndex: 1},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Score)
}

func TestSubmitExam_RecordsAttemptAndClearsSession(t *testing.T) {
	svc, c, _ := newSessionFixture(t)
	ctx := context.Background()

	_, err := svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)

	// Warm both leaderboard scopes so invalidation is observable.
	require.NoError(t, c.Set(ctx, cache.LeaderboardGlobalKey(), "[]", time.Hour))
	require.NoError(t, c.Set(ctx, cache.LeaderboardCourseKey(testCourseID), "[]", time.Hour))
	require.NoError(t, c.Set(ctx, cache.LeaderboardCourseKey(99), "[]", time.Hour))

	result, err := svc.SubmitExam(ctx, testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 1, SelectedAnswerIndex: 0},
		{QuestionID: 2, SelectedAnswerIndex: 2},
		{QuestionID: 3, SelectedAnswerIndex: 1},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Score)
	assert.Equal(t, 6, result.TotalPoints)
	assert.True(t, result.Passed)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, model.ResultStatusPassed, result.Status)
	assert.Len(t, result.Answers, 3)

	assert.False(t, c.has(cache.ExamProgressKey(testExamID, testStudentID)))
	assert.False(t, c.has(cache.ExamStartTimeKey(testExamID, testStudentID)))

	assert.False(t, c.has(cache.LeaderboardGlobalKey()))
	assert.False(t, c.has(cache.LeaderboardCourseKey(testCourseID)))
	assert.True(t, c.has(cache.LeaderboardCourseKey(99)),
		"only the submitted exam's course board goes stale")
}

func TestSubmitExam_RetakeKeepsBestScore(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	ctx := context.Background()

	_, err := svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)
	first, err := svc.SubmitExam(ctx, testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 1, SelectedAnswerIndex: 0},
		{QuestionID: 2, SelectedAnswerIndex: 2},
		{QuestionID: 3, SelectedAnswerIndex: 1},
	}, false)
	require.NoError(t, err)
	require.True(t, first.Passed)

	// Weaker retake.
	_, err = svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)
	_, err = svc.SubmitExam(ctx, testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 1, SelectedAnswerIndex: 2},
	}, false)
	require.NoError(t, err)

	result, err := svc.GetResult(ctx, testExamID, testStudentID)
	require.NoError(t, err)
	assert.Equal(t, 6, result.BestScore)
	assert.Equal(t, model.ResultStatusPassed, result.Status)
	assert.Len(t, result.Attempts, 2)
}

func TestGetProgress_WithoutSessionReportsEmpty(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	progress, err := svc.GetProgress(context.Background(), testExamID, testStudentID)
	require.NoError(t, err)
	assert.False(t, progress.Active)
	assert.Empty(t, progress.Answers)
}

func TestGetProgress_ReturnsSavedAnswers(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	ctx := context.Background()

	_, err := svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)
	_, err = svc.SaveProgress(ctx, testExamID, testStudentID, []dto.AnswerDTO{
		{QuestionID: 3, SelectedAnswerIndex: 1},
	})
	require.NoError(t, err)

	progress, err := svc.GetProgress(ctx, testExamID, testStudentID)
	require.NoError(t, err)
	assert.True(t, progress.Active)
	require.Len(t, progress.Answers, 1)
	assert.Equal(t, uint(3), progress.Answers[0].QuestionID)
}

func TestGetResult_WithoutSubmission(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, err := svc.GetResult(context.Background(), testExamID, testStudentID)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestGetResult_RequiresEnrollment(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, err := svc.GetResult(context.Background(), testExamID, 999)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestSessionRoundTripsThroughCacheAsJSON(t *testing.T) {
	svc, c, _ := newSessionFixture(t)
	ctx := context.Background()

	started, err := svc.StartExam(ctx, testExamID, testStudentID)
	require.NoError(t, err)

	raw, err := c.Get(ctx, cache.ExamProgressKey(testExamID, testStudentID))
	require.NoError(t, err)

	var cached struct {
		StartTime   time.Time `json:"startTime"`
		IsSubmitted bool      `json:"isSubmitted"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, started.Session.StartTime, cached.StartTime)
	assert.False(t, cached.IsSubmitted)
}
