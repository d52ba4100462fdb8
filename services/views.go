package services

import (
	"time"

	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
)

type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type CourseSummary struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Price       float64      `json:"price"`
	PriceLabel  string       `json:"priceLabel"`
	Instructor  *UserSummary `json:"instructor,omitempty"`
}

type CourseEnrollment struct {
	ID         uint        `json:"id"`
	EnrolledAt time.Time   `json:"enrolledAt"`
	User       UserSummary `json:"user"`
}

type CourseDetail struct {
	models.Course
	PriceLabel      string             `json:"priceLabel"`
	Instructor      *UserSummary       `json:"instructor,omitempty"`
	EnrollmentCount int64              `json:"enrollmentCount"`
	Enrollments     []CourseEnrollment `json:"enrollments,omitempty"`
}

type EnrollmentView struct {
	models.Enrollment
	User   *UserSummary   `json:"user,omitempty"`
	Course *CourseSummary `json:"course,omitempty"`
}

type UserListItem struct {
	models.User
	CourseCount     int64 `json:"courseCount"`
	EnrollmentCount int64 `json:"enrollmentCount"`
}

type UserProfile struct {
	models.User
	CreatedCourses []CourseSummary  `json:"createdCourses"`
	Enrollments    []EnrollmentView `json:"enrollments"`
}

type UserStats struct {
	CreatedCourses int64 `json:"createdCourses"`
	Enrollments    int64 `json:"enrollments"`
}

func summarizeUser(u *models.User, withEmail bool) *UserSummary {
	if u == nil {
		return nil
	}
	s := &UserSummary{ID: u.ID, Name: u.Name}
	if withEmail {
		s.Email = u.Email
	}
	return s
}

func summarizeCourse(c *models.Course) *CourseSummary {
	if c == nil {
		return nil
	}
	return &CourseSummary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		PriceLabel:  utils.FormatCurrencyIDR(c.Price),
		Instructor:  summarizeUser(c.Instructor, false),
	}
}
