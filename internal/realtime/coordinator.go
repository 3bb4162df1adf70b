package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/dto"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// Outbound event names on the per-student exam channel.
const (
	EventExamStarted       = "examStarted"
	EventProgressSaved     = "progressSaved"
	EventExamSubmitted     = "examSubmitted"
	EventExamAutoSubmitted = "examAutoSubmitted"
	EventError             = "error"
)

// Broadcaster delivers an event to the student's exam channel. A missing
// connection is not an error; the delivery is simply dropped.
type Broadcaster interface {
	Emit(examID, studentID uint, event string, payload interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) Emit(uint, uint, string, interface{}) {}

// Coordinator guarantees an attempt cannot outlive its allotted duration:
// it arms one countdown per sitting and fires the auto-submission when the
// window elapses. Manual submission must cancel the countdown before scoring
// (cancel-before-act), so one sitting never records two attempts.
type Coordinator struct {
	registry *TimerRegistry
	sessions service.ExamSessionService

	mu          sync.RWMutex
	broadcaster Broadcaster
}

func NewCoordinator(registry *TimerRegistry, sessions service.ExamSessionService) *Coordinator {
	return &Coordinator{
		registry:    registry,
		sessions:    sessions,
		broadcaster: noopBroadcaster{},
	}
}

// SetBroadcaster attaches the realtime channel used for auto-submit results.
func (c *Coordinator) SetBroadcaster(b Broadcaster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcaster = b
}

func (c *Coordinator) emit(examID, studentID uint, event string, payload interface{}) {
	c.mu.RLock()
	b := c.broadcaster
	c.mu.RUnlock()
	b.Emit(examID, studentID, event, payload)
}

// ArmAutoSubmit schedules the forced submission for one sitting. Callers pass
// the remaining window, not the full duration, so a resumed session keeps its
// original deadline.
func (c *Coordinator) ArmAutoSubmit(examID, studentID uint, remaining time.Duration) {
	key := SessionKey(examID, studentID)
	c.registry.Arm(key, remaining, func() {
		c.fire(examID, studentID)
	})
	log.Info().Str("session", key).Dur("remaining", remaining).Msg("Auto-submit timer armed")
}

// CancelAutoSubmit removes the countdown for a sitting, typically because a
// manual submission is about to run.
func (c *Coordinator) CancelAutoSubmit(examID, studentID uint) bool {
	key := SessionKey(examID, studentID)
	cancelled := c.registry.Cancel(key)
	if cancelled {
		log.Info().Str("session", key).Msg("Auto-submit timer cancelled")
	}
	return cancelled
}

func (c *Coordinator) fire(examID, studentID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Best effort: if the session already vanished, submit empty answers.
	var answers []dto.AnswerDTO
	if progress, err := c.sessions.GetProgress(ctx, examID, studentID); err == nil && progress.Active {
		answers = progress.Answers
	}

	result, err := c.sessions.SubmitExam(ctx, examID, studentID, answers, true)
	if err != nil {
		// Nothing to crash here: the client may be long gone. Log, tell the
		// channel if anyone is listening, and move on.
		log.Error().Err(err).Uint("examID", examID).Uint("studentID", studentID).Msg("Auto-submit failed")
		c.emit(examID, studentID, EventError, map[string]string{"message": "automatic submission failed"})
		return
	}

	log.Info().Uint("examID", examID).Uint("studentID", studentID).Int("score", result.Score).Msg("Exam auto-submitted")
	c.emit(examID, studentID, EventExamAutoSubmitted, result)
}
