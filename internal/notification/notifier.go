package notification

import (
	"fmt"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// Event is a pending fan-out produced by a core mutation. Services return
// events instead of dispatching inline so their logic stays testable without
// a notification channel; the controller hands them to a Notifier.
type Event struct {
	Type     string
	CourseID uint
	Message  string
}

func ExamAdded(courseID uint, examTitle string) Event {
	return Event{
		Type:     model.NotificationExamAdded,
		CourseID: courseID,
		Message:  fmt.Sprintf("A new exam %q has been added to your course", examTitle),
	}
}

func ExamUpdated(courseID uint, examTitle string) Event {
	return Event{
		Type:     model.NotificationExamUpdated,
		CourseID: courseID,
		Message:  fmt.Sprintf("The exam %q has been updated", examTitle),
	}
}

func ExamDeleted(courseID uint, examTitle string) Event {
	return Event{
		Type:     model.NotificationExamDeleted,
		CourseID: courseID,
		Message:  fmt.Sprintf("The exam %q has been removed from your course", examTitle),
	}
}

// Notifier fans events out to every student enrolled in the event's course.
// Dispatch is fire-and-forget: failures are logged, never propagated.
type Notifier interface {
	Dispatch(events []Event)
}

type notifier struct {
	enrollmentRepo   repository.EnrollmentRepository
	notificationRepo repository.NotificationRepository
}

func NewNotifier(enrollmentRepo repository.EnrollmentRepository, notificationRepo repository.NotificationRepository) Notifier {
	return &notifier{enrollmentRepo: enrollmentRepo, notificationRepo: notificationRepo}
}

func (n *notifier) Dispatch(events []Event) {
	for _, e := range events {
		enrollments, err := n.enrollmentRepo.FindByCourseID(e.CourseID)
		if err != nil {
			log.Error().Err(err).Uint("courseID", e.CourseID).Str("type", e.Type).Msg("Notification fan-out: failed to load enrollments")
			continue
		}
		notifications := make([]model.Notification, 0, len(enrollments))
		for _, enr := range enrollments {
			notifications = append(notifications, model.Notification{
				UserID:   enr.StudentID,
				CourseID: e.CourseID,
				Type:     e.Type,
				Message:  e.Message,
			})
		}
		if err := n.notificationRepo.CreateBatch(notifications); err != nil {
			log.Error().Err(err).Uint("courseID", e.CourseID).Str("type", e.Type).Msg("Notification fan-out: failed to persist notifications")
			continue
		}
		log.Info().Uint("courseID", e.CourseID).Str("type", e.Type).Int("recipients", len(notifications)).Msg("Notifications dispatched")
	}
}
