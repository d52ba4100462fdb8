package services

import (
	"strings"

	"github.com/yeremiapane/clipper-lms/activity"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
	"gorm.io/gorm"
)

// Publisher receives activity events. The activity hub implements it.
type Publisher interface {
	Publish(ev activity.Event)
}

type CourseService struct {
	DB     *gorm.DB
	Events Publisher
}

func NewCourseService(db *gorm.DB, events Publisher) *CourseService {
	return &CourseService{DB: db, Events: events}
}

type CreateCourseInput struct {
	Title       string
	Description *string
	Price       *float64
}

// CoursePatch carries the fields of a partial update; nil means untouched.
type CoursePatch struct {
	Title       *string
	Description *string
	Price       *float64
}

func (p CoursePatch) empty() bool {
	return (p.Title == nil || *p.Title == "") && p.Description == nil && p.Price == nil
}

func (s *CourseService) Create(identity models.Identity, input CreateCourseInput) (*CourseDetail, error) {
	if err := RequireRole(identity, "Forbidden: Only instructors can create courses", models.RoleInstructor); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" || input.Price == nil {
		return nil, invalidInput("Title and price are required")
	}
	if *input.Price < 0 {
		return nil, invalidInput("Price must not be negative")
	}

	course := models.Course{
		Title:        title,
		Description:  input.Description,
		Price:        *input.Price,
		InstructorID: identity.ID,
	}
	if err := s.DB.Create(&course).Error; err != nil {
		return nil, internal(err)
	}

	detail, err := s.Get(course.ID)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Course %d created by instructor %d", course.ID, identity.ID)
	s.publish(activity.EventCourseCreated, &course, summarizeCourse(&course))
	return detail, nil
}

func (s *CourseService) Update(identity models.Identity, courseID uint, patch CoursePatch) (*CourseDetail, error) {
	course, err := s.find(courseID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwnerOrAdmin(identity, course.InstructorID, "Forbidden: You can only update your own courses"); err != nil {
		return nil, err
	}
	if patch.empty() {
		return nil, invalidInput("At least one field must be provided")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, invalidInput("Price must not be negative")
	}

	updates := map[string]interface{}{}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) != "" {
		updates["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if len(updates) == 0 {
		return nil, invalidInput("At least one field must be provided")
	}

	if err := s.DB.Model(course).Updates(updates).Error; err != nil {
		return nil, internal(err)
	}

	detail, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Course %d updated by user %d", courseID, identity.ID)
	s.publish(activity.EventCourseUpdated, course, summarizeCourse(&detail.Course))
	return detail, nil
}

// Delete removes the course together with its enrollments.
func (s *CourseService) Delete(identity models.Identity, courseID uint) error {
	course, err := s.find(courseID)
	if err != nil {
		return err
	}
	if err := RequireOwnerOrAdmin(identity, course.InstructorID, "Forbidden: You can only delete your own courses"); err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return internal(err)
	}

	utils.InfoLogger.Printf("Course %d deleted by user %d", courseID, identity.ID)
	s.publish(activity.EventCourseDeleted, course, map[string]uint{"id": courseID})
	return nil
}

// List returns every course, newest first, with instructor and enrollment count.
func (s *CourseService) List() ([]CourseDetail, error) {
	var courses []models.Course
	if err := s.DB.Preload("Instructor").Order("created_at DESC").Order("id DESC").Find(&courses).Error; err != nil {
		return nil, internal(err)
	}
	return s.withCounts(courses, true)
}

// ListMine returns the calling instructor's own courses.
func (s *CourseService) ListMine(identity models.Identity) ([]CourseDetail, error) {
	if err := RequireRole(identity, "Forbidden: Instructor access required", models.RoleInstructor); err != nil {
		return nil, err
	}

	var courses []models.Course
	if err := s.DB.Where("instructor_id = ?", identity.ID).Order("created_at DESC").Order("id DESC").Find(&courses).Error; err != nil {
		return nil, internal(err)
	}
	return s.withCounts(courses, false)
}

func (s *CourseService) Get(courseID uint) (*CourseDetail, error) {
	var course models.Course
	err := s.DB.Preload("Instructor").
		Preload("Enrollments", func(db *gorm.DB) *gorm.DB {
			return db.Order("enrolled_at DESC")
		}).
		Preload("Enrollments.User").
		First(&course, courseID).Error
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, notFound("Course not found")
		}
		return nil, internal(err)
	}

	detail := &CourseDetail{
		Course:          course,
		PriceLabel:      utils.FormatCurrencyIDR(course.Price),
		Instructor:      summarizeUser(course.Instructor, true),
		EnrollmentCount: int64(len(course.Enrollments)),
		Enrollments:     make([]CourseEnrollment, 0, len(course.Enrollments)),
	}
	for _, e := range course.Enrollments {
		ce := CourseEnrollment{ID: e.ID, EnrolledAt: e.EnrolledAt}
		if e.User != nil {
			ce.User = *summarizeUser(e.User, true)
		}
		detail.Enrollments = append(detail.Enrollments, ce)
	}
	return detail, nil
}

func (s *CourseService) find(courseID uint) (*models.Course, error) {
	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, notFound("Course not found")
		}
		return nil, internal(err)
	}
	return &course, nil
}

func (s *CourseService) withCounts(courses []models.Course, withInstructor bool) ([]CourseDetail, error) {
	counts, err := enrollmentCounts(s.DB, courses)
	if err != nil {
		return nil, internal(err)
	}

	out := make([]CourseDetail, 0, len(courses))
	for _, c := range courses {
		d := CourseDetail{
			Course:          c,
			PriceLabel:      utils.FormatCurrencyIDR(c.Price),
			EnrollmentCount: counts[c.ID],
		}
		if withInstructor {
			d.Instructor = summarizeUser(c.Instructor, true)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *CourseService) publish(eventType string, course *models.Course, data interface{}) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(activity.Event{
		Type:         eventType,
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		Data:         data,
	})
}

func enrollmentCounts(db *gorm.DB, courses []models.Course) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(courses))
	if len(courses) == 0 {
		return counts, nil
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	var rows []struct {
		CourseID uint
		Total    int64
	}
	err := db.Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", ids).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.CourseID] = r.Total
	}
	return counts, nil
}
