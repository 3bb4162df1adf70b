package service

import (
	"context"
	"sync"
	"time"

	"github.com/Meghna-Anilkumar/eduzest-backend/internal/cache"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/model"
	"github.com/Meghna-Anilkumar/eduzest-backend/internal/repository"
	"gorm.io/gorm"
)

// fakeCache is an in-memory Cache that records the TTL written with each key
// so tests can assert on expiry windows without waiting them out.
type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		delete(c.ttls, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *fakeCache) ttl(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

// fakeExamRepo stores exam rows and question sets separately, the way the
// real schema does, so a metadata save never touches questions.
type fakeExamRepo struct {
	exams     map[uint]model.Exam
	questions map[uint][]model.Question
	nextID    uint
	createErr error
}

func newFakeExamRepo(exams ...*model.Exam) *fakeExamRepo {
	r := &fakeExamRepo{exams: map[uint]model.Exam{}, questions: map[uint][]model.Question{}}
	for _, e := range exams {
		row := *e
		row.Questions = nil
		r.exams[e.ID] = row
		r.questions[e.ID] = e.Questions
		if e.ID > r.nextID {
			r.nextID = e.ID
		}
	}
	return r
}

func (r *fakeExamRepo) Create(exam *model.Exam) error {
	if r.createErr != nil {
		return r.createErr
	}
	if exam.ID == 0 {
		r.nextID++
		exam.ID = r.nextID
	}
	row := *exam
	row.Questions = nil
	r.exams[exam.ID] = row
	r.questions[exam.ID] = exam.Questions
	return nil
}

func (r *fakeExamRepo) Update(exam *model.Exam) error {
	if _, ok := r.exams[exam.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *exam
	row.Questions = nil
	r.exams[exam.ID] = row
	return nil
}

func (r *fakeExamRepo) Delete(id uint) error {
	delete(r.exams, id)
	delete(r.questions, id)
	return nil
}

func (r *fakeExamRepo) FindByID(id uint) (*model.Exam, error) {
	e, ok := r.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := e
	return &out, nil
}

func (r *fakeExamRepo) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	e, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	e.Questions = r.questions[id]
	return e, nil
}

func (r *fakeExamRepo) FindByCourseID(courseID uint) ([]repository.ExamWithQuestionCount, error) {
	var out []repository.ExamWithQuestionCount
	for id, e := range r.exams {
		if e.CourseID == courseID {
			out = append(out, repository.ExamWithQuestionCount{Exam: e, QuestionCount: len(r.questions[id])})
		}
	}
	return out, nil
}

func (r *fakeExamRepo) ReplaceQuestions(examID uint, questions []model.Question) error {
	if _, ok := r.exams[examID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.questions[examID] = questions
	return nil
}

type enrollmentPair struct{ studentID, courseID uint }

type fakeEnrollmentRepo struct {
	enrolled map[enrollmentPair]bool
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrolled: map[enrollmentPair]bool{}}
}

func (r *fakeEnrollmentRepo) enroll(studentID, courseID uint) {
	r.enrolled[enrollmentPair{studentID, courseID}] = true
}

func (r *fakeEnrollmentRepo) FindByUserAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	if !r.enrolled[enrollmentPair{studentID, courseID}] {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Enrollment{StudentID: studentID, CourseID: courseID}, nil
}

func (r *fakeEnrollmentRepo) FindByCourseID(courseID uint) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for p := range r.enrolled {
		if p.courseID == courseID {
			out = append(out, model.Enrollment{StudentID: p.studentID, CourseID: p.courseID})
		}
	}
	return out, nil
}

type fakeCourseRepo struct {
	courses map[uint]*model.Course
	// assessment gate state per course/student
	totalAssessments  map[uint]int64
	passedAssessments map[enrollmentPair]int64
}

func newFakeCourseRepo(courses ...*model.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{
		courses:           map[uint]*model.Course{},
		totalAssessments:  map[uint]int64{},
		passedAssessments: map[enrollmentPair]int64{},
	}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) FindByID(id uint) (*model.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCourseRepo) CountTotalAssessments(courseID uint) (int64, error) {
	return r.totalAssessments[courseID], nil
}

func (r *fakeCourseRepo) CountPassedAssessments(courseID, studentID uint) (int64, error) {
	return r.passedAssessments[enrollmentPair{studentID, courseID}], nil
}

type resultKey struct{ examID, studentID uint }

// fakeResultRepo mirrors the append-and-rederive semantics of the real
// repository in memory.
type fakeResultRepo struct {
	results map[resultKey]*model.ExamResult
	totals  []repository.StudentTotal
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: map[resultKey]*model.ExamResult{}}
}

func (r *fakeResultRepo) FindByExamAndStudent(examID, studentID uint) (*model.ExamResult, error) {
	res, ok := r.results[resultKey{examID, studentID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return res, nil
}

func (r *fakeResultRepo) AppendAttempt(examID, studentID uint, totalPoints int, attempt *model.Attempt) (*model.ExamResult, error) {
	key := resultKey{examID, studentID}
	res, ok := r.results[key]
	if !ok {
		res = &model.ExamResult{
			ExamID:      examID,
			StudentID:   studentID,
			TotalPoints: totalPoints,
			Status:      model.ResultStatusInProgress,
		}
		r.results[key] = res
	}
	res.Attempts = append(res.Attempts, *attempt)
	summary := model.DeriveResultSummary(res.Attempts)
	res.BestScore = summary.BestScore
	res.EarnedPoints = summary.BestScore
	res.Status = summary.Status
	return res, nil
}

func (r *fakeResultRepo) AggregateTotals(courseID *uint) ([]repository.StudentTotal, error) {
	return r.totals, nil
}
