package repository

import (
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"gorm.io/gorm"
)

type CourseRepository interface {
	FindByID(id uint) (*model.Course, error)
	// CountTotalAssessments counts the course's module-level assessments.
	CountTotalAssessments(courseID uint) (int64, error)
	// CountPassedAssessments counts how many of them the student has passed.
	CountPassedAssessments(courseID, studentID uint) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) CountTotalAssessments(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Assessment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *courseRepository) CountPassedAssessments(courseID, studentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.AssessmentResult{}).
		Joins("JOIN assessments ON assessments.id = assessment_results.assessment_id AND assessments.deleted_at IS NULL").
		Where("assessments.course_id = ? AND assessment_results.student_id = ? AND assessment_results.status = ?",
			courseID, studentID, model.AssessmentStatusPassed).
		Count(&count).Error
	return count, err
}
