package models

import "time"

// Enrollment links a student to a course. The (user_id, course_id) pair is
// unique at the storage level; that index is what serializes concurrent enrolls.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_pair,priority:1" json:"userId"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_pair,priority:2;index" json:"courseId"`
	EnrolledAt time.Time `gorm:"not null;index" json:"enrolledAt"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
