package models

import "gorm.io/gorm"

// Category is a top-level forum section.
type Category struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"size:32;not null" json:"name"`
	Slug          string        `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"subcategories,omitempty"`
}

// BeforeSave fills a blank slug from the name.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	return nil
}

// Subcategory groups topics inside a Category.
type Subcategory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Name       string    `gorm:"size:32;not null" json:"name"`
	Slug       string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

// BeforeSave fills a blank slug from the name.
func (s *Subcategory) BeforeSave(_ *gorm.DB) error {
	if s.Slug == "" {
		s.Slug = Slugify(s.Name)
	}
	return nil
}
