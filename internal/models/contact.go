package models

import "time"

// ContactRequest is a message sent to a developer. The sender may be
// anonymous, in which case UserID is nil.
type ContactRequest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DeveloperID uint      `gorm:"not null;index" json:"developer_id"`
	UserID      *uint     `gorm:"index" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Email       string    `gorm:"size:254;not null" json:"email"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Company     *string   `gorm:"size:200" json:"company"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
