package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clipper-lms/services"
	"github.com/yeremiapane/clipper-lms/utils"
)

type CourseController struct {
	Courses *services.CourseService
}

func NewCourseController(courses *services.CourseService) *CourseController {
	return &CourseController{Courses: courses}
}

func (cc *CourseController) GetAllCourses(c *gin.Context) {
	courses, err := cc.Courses.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Courses retrieved successfully", gin.H{"courses": courses})
}

func (cc *CourseController) GetCourseByID(c *gin.Context) {
	courseID, ok := parseID(c, "course")
	if !ok {
		return
	}

	course, err := cc.Courses.Get(courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Course retrieved successfully", gin.H{"course": course})
}

// GetMyCourses lists the calling instructor's courses.
func (cc *CourseController) GetMyCourses(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	courses, err := cc.Courses.ListMine(identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Instructor courses retrieved successfully", gin.H{"courses": courses})
}

func (cc *CourseController) CreateCourse(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Title       string   `json:"title"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	course, err := cc.Courses.Create(identity, services.CreateCourseInput{
		Title:       body.Title,
		Description: body.Description,
		Price:       body.Price,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Course created successfully", gin.H{"course": course})
}

func (cc *CourseController) UpdateCourse(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	courseID, ok := parseID(c, "course")
	if !ok {
		return
	}

	var body struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	course, err := cc.Courses.Update(identity, courseID, services.CoursePatch{
		Title:       body.Title,
		Description: body.Description,
		Price:       body.Price,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Course updated successfully", gin.H{"course": course})
}

func (cc *CourseController) DeleteCourse(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	courseID, ok := parseID(c, "course")
	if !ok {
		return
	}

	if err := cc.Courses.Delete(identity, courseID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Course deleted successfully", nil)
}
