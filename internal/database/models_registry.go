package database

import "devhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.Profile{},
		&models.Project{},
		&models.Upvote{},
		&models.Comment{},
		&models.Skill{},
		&models.ContactRequest{},
	}
}
