package repository

import (
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	FindByUserAndCourse(studentID, courseID uint) (*model.Enrollment, error)
	FindByCourseID(courseID uint) ([]model.Enrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) FindByUserAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindByCourseID(courseID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.Where("course_id = ?", courseID).Find(&enrollments).Error
	return enrollments, err
}
