package service

import "errors"

// Business errors crossing the service boundary. Controllers map these to
// HTTP codes; anything else is reported as a generic internal failure.
var (
	// Not found
	ErrExamNotFound   = errors.New("exam not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrResultNotFound = errors.New("exam result not found")

	// Validation. Wrapped by the concrete reason so controllers can tell a
	// bad exam definition apart from an unexpected failure.
	ErrExamValidation = errors.New("invalid exam definition")

	// Authorization
	ErrNotEnrolled             = errors.New("student is not enrolled in this course")
	ErrPrerequisitesIncomplete = errors.New("all course assessments must be passed before taking exams")
	ErrNotCourseOwner          = errors.New("only the course instructor can manage its exams")

	// Session / temporal
	ErrNoActiveSession = errors.New("no active exam session, start the exam first")
	ErrDurationExpired = errors.New("exam duration has expired")
)
