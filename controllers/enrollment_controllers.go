package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clipper-lms/services"
	"github.com/yeremiapane/clipper-lms/utils"
)

type EnrollmentController struct {
	Enrollments *services.EnrollmentService
}

func NewEnrollmentController(enrollments *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{Enrollments: enrollments}
}

func (ec *EnrollmentController) Enroll(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	if err := ec.Enrollments.AuthorizeEnroll(identity); err != nil {
		respondServiceError(c, err)
		return
	}
	courseID, ok := parseID(c, "course")
	if !ok {
		return
	}

	enrollment, err := ec.Enrollments.Enroll(identity, courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Successfully enrolled in course", gin.H{"enrollment": enrollment})
}

func (ec *EnrollmentController) Unenroll(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	if err := ec.Enrollments.AuthorizeUnenroll(identity); err != nil {
		respondServiceError(c, err)
		return
	}
	courseID, ok := parseID(c, "course")
	if !ok {
		return
	}

	if err := ec.Enrollments.Unenroll(identity, courseID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Successfully unenrolled from course", nil)
}

func (ec *EnrollmentController) GetMyEnrollments(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	enrollments, err := ec.Enrollments.ListMine(identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Enrollments retrieved successfully", gin.H{"enrollments": enrollments})
}

// GetAllEnrollments: admins see everything, instructors their own courses.
func (ec *EnrollmentController) GetAllEnrollments(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	enrollments, err := ec.Enrollments.ListAll(identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Enrollments retrieved successfully", gin.H{"enrollments": enrollments})
}

func (ec *EnrollmentController) GetCourseEnrollments(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	courseID, ok := parseID(c, "course")
	if !ok {
		return
	}

	enrollments, err := ec.Enrollments.ListForCourse(identity, courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Course enrollments retrieved successfully", gin.H{
		"enrollments": enrollments,
		"count":       len(enrollments),
	})
}
