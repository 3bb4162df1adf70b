package dto

import "time"

type NotificationDTO struct {
	ID        uint      `json:"id"`
	CourseID  uint      `json:"course_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
