package services

import (
	"strings"

	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type UserPatch struct {
	Name  *string
	Email *string
}

func (s *UserService) List(identity models.Identity) ([]UserListItem, error) {
	if err := RequireRole(identity, "Forbidden: Admin access required", models.RoleAdmin); err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.DB.Order("id ASC").Find(&users).Error; err != nil {
		return nil, internal(err)
	}

	courseCounts, err := countBy(s.DB.Model(&models.Course{}), "instructor_id")
	if err != nil {
		return nil, internal(err)
	}
	enrollmentCounts, err := countBy(s.DB.Model(&models.Enrollment{}), "user_id")
	if err != nil {
		return nil, internal(err)
	}

	out := make([]UserListItem, 0, len(users))
	for _, u := range users {
		out = append(out, UserListItem{
			User:            u,
			CourseCount:     courseCounts[u.ID],
			EnrollmentCount: enrollmentCounts[u.ID],
		})
	}
	return out, nil
}

// Get is allowed for the user themself and for admins.
func (s *UserService) Get(identity models.Identity, userID uint) (*UserProfile, error) {
	if err := RequireOwnerOrAdmin(identity, userID, "Forbidden: Access denied"); err != nil {
		return nil, err
	}

	var user models.User
	err := s.DB.
		Preload("Courses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Enrollments", func(db *gorm.DB) *gorm.DB { return db.Order("enrolled_at DESC") }).
		Preload("Enrollments.Course").
		First(&user, userID).Error
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, internal(err)
	}

	profile := &UserProfile{
		User:           user,
		CreatedCourses: make([]CourseSummary, 0, len(user.Courses)),
		Enrollments:    toViews(user.Enrollments, false, true),
	}
	for i := range user.Courses {
		profile.CreatedCourses = append(profile.CreatedCourses, *summarizeCourse(&user.Courses[i]))
	}
	return profile, nil
}

func (s *UserService) Update(identity models.Identity, userID uint, patch UserPatch) (*models.User, error) {
	if err := RequireOwnerOrAdmin(identity, userID, "Forbidden: Access denied"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if err := validate.Var(email, "email"); err != nil {
			return nil, invalidInput("A valid email is required")
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return nil, invalidInput("At least one field (name or email) must be provided")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, internal(err)
	}

	if err := s.DB.Model(&user).Updates(updates).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, internal(err)
	}
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, internal(err)
	}

	utils.InfoLogger.Printf("User %d updated by %d", userID, identity.ID)
	return &user, nil
}

// Delete removes a user with everything that references them: their own
// enrollments, the courses they teach and the enrollments on those courses.
func (s *UserService) Delete(identity models.Identity, userID uint) error {
	if err := RequireRole(identity, "Forbidden: Admin access required", models.RoleAdmin); err != nil {
		return err
	}
	if identity.ID == userID {
		return invalidInput("Cannot delete your own account")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		var courseIDs []uint
		if err := tx.Model(&models.Course{}).Where("instructor_id = ?", userID).Pluck("id", &courseIDs).Error; err != nil {
			return err
		}
		if len(courseIDs) > 0 {
			if err := tx.Where("course_id IN ?", courseIDs).Delete(&models.Enrollment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", courseIDs).Delete(&models.Course{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		if utils.IsNotFound(err) {
			return notFound("User not found")
		}
		return internal(err)
	}

	utils.InfoLogger.Printf("User %d deleted by admin %d", userID, identity.ID)
	return nil
}

func (s *UserService) Stats(identity models.Identity) (*UserStats, error) {
	var exists int64
	if err := s.DB.Model(&models.User{}).Where("id = ?", identity.ID).Count(&exists).Error; err != nil {
		return nil, internal(err)
	}
	if exists == 0 {
		return nil, notFound("User not found")
	}

	stats := &UserStats{}
	if err := s.DB.Model(&models.Course{}).Where("instructor_id = ?", identity.ID).Count(&stats.CreatedCourses).Error; err != nil {
		return nil, internal(err)
	}
	if err := s.DB.Model(&models.Enrollment{}).Where("user_id = ?", identity.ID).Count(&stats.Enrollments).Error; err != nil {
		return nil, internal(err)
	}
	return stats, nil
}

func countBy(query *gorm.DB, column string) (map[uint]int64, error) {
	var rows []struct {
		OwnerID uint
		Total   int64
	}
	err := query.Select(column + " AS owner_id, COUNT(*) AS total").Group(column).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.OwnerID] = r.Total
	}
	return counts, nil
}
