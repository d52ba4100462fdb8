package services

import (
	"time"

	"github.com/yeremiapane/clipper-lms/activity"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	DB     *gorm.DB
	Events Publisher
	now    func() time.Time
}

func NewEnrollmentService(db *gorm.DB, events Publisher) *EnrollmentService {
	return &EnrollmentService{DB: db, Events: events, now: time.Now}
}

// AuthorizeEnroll is the role check Enroll runs first; handlers call it before
// parsing the path so a non-student always gets Forbidden.
func (s *EnrollmentService) AuthorizeEnroll(identity models.Identity) error {
	return RequireRole(identity, "Forbidden: Only students can enroll in courses", models.RoleStudent)
}

func (s *EnrollmentService) AuthorizeUnenroll(identity models.Identity) error {
	return RequireRole(identity, "Forbidden: Student access required", models.RoleStudent)
}

// Enroll inserts the (student, course) pair. There is no read of the pair
// beforehand: the unique index on enrollments decides which of two racing
// requests wins, and the loser gets ErrAlreadyEnrolled.
func (s *EnrollmentService) Enroll(identity models.Identity, courseID uint) (*EnrollmentView, error) {
	if err := s.AuthorizeEnroll(identity); err != nil {
		return nil, err
	}

	var course models.Course
	if err := s.DB.Preload("Instructor").First(&course, courseID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, notFound("Course not found")
		}
		return nil, internal(err)
	}

	var student models.User
	if err := s.DB.Where("id = ? AND role = ?", identity.ID, models.RoleStudent).First(&student).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, internal(err)
	}

	enrollment := models.Enrollment{
		UserID:     identity.ID,
		CourseID:   courseID,
		EnrolledAt: s.now(),
	}
	if err := s.DB.Create(&enrollment).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, internal(err)
	}

	utils.InfoLogger.Printf("Student %d enrolled in course %d", identity.ID, courseID)

	view := &EnrollmentView{
		Enrollment: enrollment,
		Course:     summarizeCourse(&course),
	}
	s.publish(activity.EventEnrollmentCreated, &course, EnrollmentView{
		Enrollment: enrollment,
		User:       summarizeUser(&student, true),
	})
	return view, nil
}

// Unenroll removes the pair with a single delete; no matching row is NotFound.
func (s *EnrollmentService) Unenroll(identity models.Identity, courseID uint) error {
	if err := s.AuthorizeUnenroll(identity); err != nil {
		return err
	}

	res := s.DB.Where("user_id = ? AND course_id = ?", identity.ID, courseID).Delete(&models.Enrollment{})
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Enrollment not found")
	}

	utils.InfoLogger.Printf("Student %d unenrolled from course %d", identity.ID, courseID)

	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err == nil {
		s.publish(activity.EventEnrollmentRemoved, &course, map[string]uint{
			"userId":   identity.ID,
			"courseId": courseID,
		})
	}
	return nil
}

// ListMine returns the caller's enrollments, most recent first.
func (s *EnrollmentService) ListMine(identity models.Identity) ([]EnrollmentView, error) {
	if err := RequireRole(identity, "Forbidden: Student access required", models.RoleStudent); err != nil {
		return nil, err
	}

	var enrollments []models.Enrollment
	err := s.DB.Preload("Course").Preload("Course.Instructor").
		Where("user_id = ?", identity.ID).
		Order("enrolled_at DESC").Order("id DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, internal(err)
	}
	return toViews(enrollments, false, true), nil
}

// ListForCourse is open to admins and the course's instructor.
func (s *EnrollmentService) ListForCourse(identity models.Identity, courseID uint) ([]EnrollmentView, error) {
	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, notFound("Course not found")
		}
		return nil, internal(err)
	}
	if err := RequireOwnerOrAdmin(identity, course.InstructorID, "Forbidden: You can only view enrollments for your own courses"); err != nil {
		return nil, err
	}

	var enrollments []models.Enrollment
	err := s.DB.Preload("User").
		Where("course_id = ?", courseID).
		Order("enrolled_at DESC").Order("id DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, internal(err)
	}
	return toViews(enrollments, true, false), nil
}

// ListAll shows admins every enrollment and instructors the ones on their
// own courses.
func (s *EnrollmentService) ListAll(identity models.Identity) ([]EnrollmentView, error) {
	if err := RequireRole(identity, "Forbidden: Access denied", models.RoleAdmin, models.RoleInstructor); err != nil {
		return nil, err
	}

	query := s.DB.Preload("User").Preload("Course").Preload("Course.Instructor")
	if identity.Role == models.RoleInstructor {
		query = query.Where("course_id IN (?)",
			s.DB.Model(&models.Course{}).Select("id").Where("instructor_id = ?", identity.ID))
	}

	var enrollments []models.Enrollment
	if err := query.Order("enrolled_at DESC").Order("id DESC").Find(&enrollments).Error; err != nil {
		return nil, internal(err)
	}
	return toViews(enrollments, true, true), nil
}

func (s *EnrollmentService) publish(eventType string, course *models.Course, data interface{}) {
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

func toViews(enrollments []models.Enrollment, withUser, withCourse bool) []EnrollmentView {
	out := make([]EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		v := EnrollmentView{Enrollment: e}
		if withUser {
			v.User = summarizeUser(e.User, true)
		}
		if withCourse {
			v.Course = summarizeCourse(e.Course)
		}
		out = append(out, v)
	}
	return out
}
