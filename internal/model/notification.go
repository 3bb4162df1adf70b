package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationExamAdded   = "exam_added"
	NotificationExamUpdated = "exam_updated"
	NotificationExamDeleted = "exam_deleted"
)

type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	CourseID  uint           `json:"course_id" gorm:"not null;index"`
	Type      string         `json:"type" gorm:"not null"`
	Message   string         `json:"message" gorm:"type:text;not null"`
	Read      bool           `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
