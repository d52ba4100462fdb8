package controllers_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clipper-lms/models"
)

func TestEnrollmentFlow(t *testing.T) {
	app := newTestApp(t)
	_, instructor := app.signup("budi@example.com", models.RoleInstructor)
	_, other := app.signup("ani@example.com", models.RoleInstructor)
	_, student := app.signup("siti@example.com", models.RoleStudent)
	_, admin := app.signup("admin@example.com", models.RoleAdmin)
	courseID := app.createCourse(instructor, "Go", 299000)

	code, body := app.do(http.MethodPost, path("/enrollments/enroll/%d", courseID), student, nil)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Successfully enrolled in course", body["message"])

	code, body = app.do(http.MethodPost, path("/enrollments/enroll/%d", courseID), student, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Already enrolled in this course", body["error"])

	code, body = app.do(http.MethodGet, "/enrollments/my-enrollments", student, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["enrollments"], 1)

	code, body = app.do(http.MethodGet, path("/enrollments/course/%d", courseID), instructor, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, _ = app.do(http.MethodGet, path("/enrollments/course/%d", courseID), other, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = app.do(http.MethodGet, "/enrollments", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["enrollments"], 1)

	code, body = app.do(http.MethodGet, "/enrollments", other, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["enrollments"], 0)

	code, _ = app.do(http.MethodGet, "/enrollments", student, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = app.do(http.MethodGet, path("/courses/%d", courseID), instructor, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["course"].(map[string]interface{})["enrollmentCount"])

	code, body = app.do(http.MethodDelete, path("/enrollments/unenroll/%d", courseID), student, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Successfully unenrolled from course", body["message"])

	code, body = app.do(http.MethodDelete, path("/enrollments/unenroll/%d", courseID), student, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Enrollment not found", body["error"])
}

func TestEnrollRejections(t *testing.T) {
	app := newTestApp(t)
	_, instructor := app.signup("budi@example.com", models.RoleInstructor)
	_, student := app.signup("siti@example.com", models.RoleStudent)
	courseID := app.createCourse(instructor, "Go", 100)

	code, body := app.do(http.MethodPost, path("/enrollments/enroll/%d", courseID), instructor, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden: Only students can enroll in courses", body["error"])

	code, _ = app.do(http.MethodPost, "/enrollments/enroll/9999", student, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(http.MethodPost, "/enrollments/enroll/zero", student, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEnrollRoleCheckedBeforePathID(t *testing.T) {
	app := newTestApp(t)
	_, instructor := app.signup("budi@example.com", models.RoleInstructor)

	code, body := app.do(http.MethodPost, "/enrollments/enroll/not-a-number", instructor, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden: Only students can enroll in courses", body["error"])

	code, body = app.do(http.MethodDelete, "/enrollments/unenroll/not-a-number", instructor, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden: Student access required", body["error"])
}

func TestConcurrentEnrollOverHTTP(t *testing.T) {
	app := newTestApp(t)
	_, instructor := app.signup("budi@example.com", models.RoleInstructor)
	studentID, student := app.signup("siti@example.com", models.RoleStudent)
	courseID := app.createCourse(instructor, "Go", 100)

	const attempts = 6
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, _ := app.do(http.MethodPost, path("/enrollments/enroll/%d", courseID), student, nil)
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 1, created)

	var count int64
	app.db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", studentID, courseID).Count(&count)
	assert.Equal(t, int64(1), count)
}
