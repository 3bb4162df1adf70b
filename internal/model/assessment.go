package model

import (
	"time"

	"gorm.io/gorm"
)

// Assessment is a module-level quiz inside a course. Passing every assessment
// of a course unlocks that course's exams.
type Assessment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CourseID  uint           `json:"course_id" gorm:"not null;index"`
	Title     string         `json:"title" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

const (
	AssessmentStatusPassed = "passed"
	AssessmentStatusFailed = "failed"
)

type AssessmentResult struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	AssessmentID uint           `json:"assessment_id" gorm:"not null;index;uniqueIndex:idx_assessment_result_pair"`
	StudentID    uint           `json:"student_id" gorm:"not null;index;uniqueIndex:idx_assessment_result_pair"`
	Status       string         `json:"status" gorm:"not null"` // "passed", "failed"
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
