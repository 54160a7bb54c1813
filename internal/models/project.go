package models

import "time"

// Project is a portfolio entry owned by a single developer. UpvotesCount and
// CommentsCount are persisted and only ever adjusted together with the fact
// rows they count.
type Project struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DeveloperID   uint      `gorm:"not null;index" json:"developer_id"`
	Developer     *Profile  `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	GithubURL     *string   `json:"github_url"`
	LiveURL       *string   `json:"live_url"`
	UpvotesCount  int       `gorm:"not null;default:0;index" json:"upvotes_count"`
	CommentsCount int       `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Upvotes  []Upvote  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`

	// Upvoted reports whether the requesting user upvoted this project.
	Upvoted bool `gorm:"-" json:"upvoted"`
}

// Upvote records that a user upvoted a project. At most one row exists per
// (project, user) pair.
type Upvote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_project_user;index" json:"user_id"`
	Voter     *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is an append-only remark on a project.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Author    *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
