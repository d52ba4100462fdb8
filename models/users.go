package models

import "time"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Courses     []Course     `gorm:"foreignKey:InstructorID" json:"-"`
	Enrollments []Enrollment `gorm:"foreignKey:UserID" json:"-"`
}

// Identity is the authenticated caller as carried in a verified token.
type Identity struct {
	ID   uint   `json:"id"`
	Role Role   `json:"role"`
	Name string `json:"name"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role, Name: u.Name}
}
