package database

import "forum/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Category{},
		&models.Subcategory{},
		&models.Topic{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	}
}
