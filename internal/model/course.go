package model

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description,omitempty"`
	InstructorID uint           `json:"instructor_id" gorm:"not null;index"`
	Instructor   User           `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type Enrollment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CourseID  uint           `json:"course_id" gorm:"not null;index;uniqueIndex:idx_enrollment_course_student"`
	StudentID uint           `json:"student_id" gorm:"not null;index;uniqueIndex:idx_enrollment_course_student"`
	Student   User           `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
