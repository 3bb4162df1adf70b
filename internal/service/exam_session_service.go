package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/cache"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// startGrace pads the session TTL past the nominal duration to tolerate
// clock and network skew before the cached session silently disappears.
// Progress autosaves intentionally rewrite without the pad; the asymmetry
// comes from the original product behavior and is preserved as-is.
const startGrace = 60 * time.Second

// ExamSessionService governs the lifecycle of one student's attempt at one
// exam: start, progress autosave, manual submit and timer-driven auto-submit.
// The session lives only in the cache; the TTL is the passive backstop that
// ends an abandoned attempt, while the in-process timer is the active
// auto-submission trigger.
type ExamSessionService interface {
	StartExam(ctx context.Context, examID, studentID uint) (*dto.StartExamDTO, error)
	SaveProgress(ctx context.Context, examID, studentID uint, answers []dto.AnswerDTO) (*dto.SessionDTO, error)
	SubmitExam(ctx context.Context, examID, studentID uint, answers []dto.AnswerDTO, isAutoSubmit bool) (*dto.SubmitResultDTO, error)
	GetProgress(ctx context.Context, examID, studentID uint) (*dto.SessionDTO, error)
	GetResult(ctx context.Context, examID, studentID uint) (*dto.ExamResultDTO, error)
}

// examSession is the cached shape of an in-flight attempt.
type examSession struct {
	StartTime   time.Time       `json:"startTime"`
	Answers     []sessionAnswer `json:"answers"`
	IsSubmitted bool            `json:"isSubmitted"`
}

type sessionAnswer struct {
	QuestionID          uint `json:"questionId"`
	SelectedAnswerIndex int  `json:"selectedAnswerIndex"`
}

type examSessionService struct {
	examRepo       repository.ExamRepository
	resultRepo     repository.ExamResultRepository
	enrollmentRepo repository.EnrollmentRepository
	cache          cache.Cache
}

func NewExamSessionService(
	examRepo repository.ExamRepository,
	resultRepo repository.ExamResultRepository,
	enrollmentRepo repository.EnrollmentRepository,
	c cache.Cache,
) ExamSessionService {
	return &examSessionService{
		examRepo:       examRepo,
		resultRepo:     resultRepo,
		enrollmentRepo: enrollmentRepo,
		cache:          c,
	}
}

func (s *examSessionService) requireEnrollment(examCourseID, studentID uint) error {
	if _, err := s.enrollmentRepo.FindByUserAndCourse(studentID, examCourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		return err
	}
	return nil
}

func (s *examSessionService) loadExam(examID uint, withQuestions bool) (*model.Exam, error) {
	var exam *model.Exam
	var err error
	if withQuestions {
		exam, err = s.examRepo.FindByIDWithQuestions(examID)
	} else {
		exam, err = s.examRepo.FindByID(examID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *examSessionService) StartExam(ctx context.Context, examID, studentID uint) (*dto.StartExamDTO, error) {
	exam, err := s.loadExam(examID, false)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(exam.CourseID, studentID); err != nil {
		return nil, err
	}

	duration := time.Duration(exam.Duration) * time.Minute
	progressKey := cache.ExamProgressKey(examID, studentID)

	// Idempotent restart: a cached session is resumed verbatim so a page
	// reload never resets the attempt window.
	if raw, err := s.cache.Get(ctx, progressKey); err == nil {
		var session examSession
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("corrupt cached session for %s: %w", progressKey, err)
		}
		log.Info().Uint("examID", examID).Uint("studentID", studentID).Msg("StartExam: resuming existing session")
		return &dto.StartExamDTO{
			Session:          sessionToDTO(session, true),
			Duration:         exam.Duration,
			RemainingSeconds: remainingSeconds(session.StartTime, duration),
		}, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("cache error starting exam: %w", err)
	}

	session := examSession{StartTime: time.Now().UTC(), Answers: []sessionAnswer{}}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	ttl := duration + startGrace
	if err := s.cache.Set(ctx, progressKey, string(payload), ttl); err != nil {
		return nil, fmt.Errorf("cache error storing session: %w", err)
	}
	// The bare start time lives under its own key so elapsed-time checks at
	// submission never depend on the full session blob.
	startKey := cache.ExamStartTimeKey(examID, studentID)
	if err := s.cache.Set(ctx, startKey, session.StartTime.Format(time.RFC3339Nano), ttl); err != nil {
		return nil, fmt.Errorf("cache error storing start time: %w", err)
	}

	log.Info().Uint("examID", examID).Uint("studentID", studentID).Int("duration", exam.Duration).Msg("StartExam: new session created")
	return &dto.StartExamDTO{
		Session:          sessionToDTO(session, true),
		Duration:         exam.Duration,
		RemainingSeconds: int(duration / time.Second),
	}, nil
}

func (s *examSessionService) SaveProgress(ctx context.Context, examID, studentID uint, answers []dto.AnswerDTO) (*dto.SessionDTO, error) {
	exam, err := s.loadExam(examID, false)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(exam.CourseID, studentID); err != nil {
		return nil, err
	}

	progressKey := cache.ExamProgressKey(examID, studentID)
	raw, err := s.cache.Get(ctx, progressKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("cache error loading session: %w", err)
	}

	var session examSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("corrupt cached session for %s: %w", progressKey, err)
	}

	session.Answers = toSessionAnswers(answers)
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	// Autosaves rewrite with the bare duration, without the start grace.
	if err := s.cache.Set(ctx, progressKey, string(payload), time.Duration(exam.Duration)*time.Minute); err != nil {
		return nil, fmt.Errorf("cache error saving progress: %w", err)
	}

	out := sessionToDTO(session, true)
	return &out, nil
}

func (s *examSessionService) SubmitExam(ctx context.Context, examID, studentID uint, answers []dto.AnswerDTO, isAutoSubmit bool) (*dto.SubmitResultDTO, error) {
	exam, err := s.loadExam(examID, true)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(exam.CourseID, studentID); err != nil {
		return nil, err
	}

	startKey := cache.ExamStartTimeKey(examID, studentID)
	progressKey := cache.ExamProgressKey(examID, studentID)

	// Manual submissions are checked against the recorded start time; the
	// auto-submit path IS the expiry trigger and bypasses the check.
	if !isAutoSubmit {
		raw, err := s.cache.Get(ctx, startKey)
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrNoActiveSession
		}
		if err != nil {
			return nil, fmt.Errorf("cache error loading start time: %w", err)
		}
		startTime, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt start time for %s: %w", startKey, err)
		}
		if time.Since(startTime) > time.Duration(exam.Duration)*time.Minute {
			log.Info().Uint("examID", examID).Uint("studentID", studentID).
				Time("startTime", startTime).Int("duration", exam.Duration).Msg("SubmitExam: duration expired")
			return nil, ErrDurationExpired
		}
	}

	report := ScoreExam(exam, answers)

	attempt := model.Attempt{
		Score:       report.Score,
		Passed:      report.Passed,
		CompletedAt: time.Now().UTC(),
	}
	for _, sa := range report.Answers {
		attempt.Answers = append(attempt.Answers, model.AttemptAnswer{
			QuestionID:          sa.QuestionID,
			SelectedAnswerIndex: sa.SelectedAnswerIndex,
			IsCorrect:           sa.IsCorrect,
		})
	}

	result, err := s.resultRepo.AppendAttempt(examID, studentID, exam.TotalMarks, &attempt)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Uint("studentID", studentID).Msg("SubmitExam: failed to persist attempt")
		return nil, fmt.Errorf("database error recording attempt: %w", err)
	}

	// Leaderboards in scope of this result are stale now.
	if err := s.cache.Del(ctx, cache.LeaderboardGlobalKey(), cache.LeaderboardCourseKey(exam.CourseID)); err != nil {
		log.Error().Err(err).Uint("courseID", exam.CourseID).Msg("SubmitExam: failed to invalidate leaderboard cache")
	}

	// The session ends here whichever path submitted it.
	if err := s.cache.Del(ctx, progressKey, startKey); err != nil {
		log.Error().Err(err).Uint("examID", examID).Uint("studentID", studentID).Msg("SubmitExam: failed to clear session keys")
	}

	log.Info().Uint("examID", examID).Uint("studentID", studentID).
		Bool("autoSubmit", isAutoSubmit).Int("score", report.Score).Bool("passed", report.Passed).
		Msg("SubmitExam: attempt recorded")

	out := &dto.SubmitResultDTO{
		Score:       report.Score,
		TotalPoints: result.TotalPoints,
		Passed:      report.Passed,
		Attempts:    len(result.Attempts),
		Status:      result.Status,
	}
	for _, sa := range report.Answers {
		out.Answers = append(out.Answers, dto.ScoredAnswerDTO{
			QuestionID:          sa.QuestionID,
			SelectedAnswerIndex: sa.SelectedAnswerIndex,
			IsCorrect:           sa.IsCorrect,
			CorrectAnswerIndex:  sa.CorrectAnswerIndex,
			Explanation:         sa.Explanation,
			MarksAwarded:        sa.MarksAwarded,
		})
	}
	return out, nil
}

func (s *examSessionService) GetProgress(ctx context.Context, examID, studentID uint) (*dto.SessionDTO, error) {
	exam, err := s.loadExam(examID, false)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(exam.CourseID, studentID); err != nil {
		return nil, err
	}

	raw, err := s.cache.Get(ctx, cache.ExamProgressKey(examID, studentID))
	if errors.Is(err, cache.ErrCacheMiss) {
		// Not an error: an absent session reports as empty progress.
		return &dto.SessionDTO{Answers: []dto.AnswerDTO{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache error loading session: %w", err)
	}

	var session examSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("corrupt cached session: %w", err)
	}
	out := sessionToDTO(session, true)
	return &out, nil
}

func (s *examSessionService) GetResult(ctx context.Context, examID, studentID uint) (*dto.ExamResultDTO, error) {
	exam, err := s.loadExam(examID, false)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(exam.CourseID, studentID); err != nil {
		return nil, err
	}

	result, err := s.resultRepo.FindByExamAndStudent(examID, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}

	out := &dto.ExamResultDTO{
		ExamID:       result.ExamID,
		StudentID:    result.StudentID,
		TotalPoints:  result.TotalPoints,
		BestScore:    result.BestScore,
		EarnedPoints: result.EarnedPoints,
		Status:       result.Status,
	}
	for _, a := range result.Attempts {
		out.Attempts = append(out.Attempts, dto.AttemptDTO{
			Score:       a.Score,
			Passed:      a.Passed,
			CompletedAt: a.CompletedAt,
		})
	}
	return out, nil
}

func toSessionAnswers(answers []dto.AnswerDTO) []sessionAnswer {
	out := make([]sessionAnswer, 0, len(answers))
	for _, a := range answers {
		out = append(out, sessionAnswer{QuestionID: a.QuestionID, SelectedAnswerIndex: a.SelectedAnswerIndex})
	}
	return out
}

func sessionToDTO(session examSession, active bool) dto.SessionDTO {
	out := dto.SessionDTO{
		StartTime:   session.StartTime,
		IsSubmitted: session.IsSubmitted,
		Active:      active,
		Answers:     []dto.AnswerDTO{},
	}
	for _, a := range session.Answers {
		out.Answers = append(out.Answers, dto.AnswerDTO{QuestionID: a.QuestionID, SelectedAnswerIndex: a.SelectedAnswerIndex})
	}
	return out
}

func remainingSeconds(startTime time.Time, duration time.Duration) int {
	remaining := duration - time.Since(startTime)
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining / time.Second)
}
