// Package models contains data structures for the application's domain models.
package models

import "time"

// Role is the application role a profile is registered with. It never changes
// after registration.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleHR        Role = "hr"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the roles a profile may hold.
func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleHR, RoleUser:
		return true
	}
	return false
}

// Account is the authentication identity behind a profile.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the application-level user record. Its ID equals the ID of the
// Account it belongs to.
type Profile struct {
	ID             uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Role           Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Bio            string    `gorm:"type:text" json:"bio"`
	GithubURL      string    `json:"github_url"`
	LinkedinURL    string    `json:"linkedin_url"`
	AvatarURL      string    `json:"avatar_url"`
	ContactVisible bool      `gorm:"not null;default:false" json:"contact_visible"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Projects []Project `gorm:"foreignKey:DeveloperID" json:"projects,omitempty"`
	Skills   []Skill   `gorm:"foreignKey:DeveloperID" json:"skills,omitempty"`

	// ProjectsCount is only populated by developer listings.
	ProjectsCount int `gorm:"->;-:migration" json:"projects_count,omitempty"`
	// ContactEmail is exposed only to callers allowed to contact the developer.
	ContactEmail string `gorm:"-" json:"contact_email,omitempty"`
}

// IsDeveloper reports whether the profile belongs to a developer.
func (p *Profile) IsDeveloper() bool {
	return p != nil && p.Role == RoleDeveloper
}

// Skill is a label a developer attaches to their profile.
type Skill struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DeveloperID uint      `gorm:"not null;uniqueIndex:idx_developer_skill" json:"developer_id"`
	Skill       string    `gorm:"size:50;not null;uniqueIndex:idx_developer_skill" json:"skill"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName keeps the historical table name for skills.
func (Skill) TableName() string {
	return "developer_skills"
}
