package seed

import (
	"errors"
	"fmt"
	"log/slog"

	"forum/internal/middleware"
	"forum/internal/models"

	"gorm.io/gorm"
)

// Options size a demo forum.
type Options struct {
	Users            int
	TopicsPerSection int
	PostsPerTopic    int
	CommentsPerPost  int
	Seed             int64
	SkipBcrypt       bool
}

// DefaultSections is the category tree created for an empty forum.
var DefaultSections = []struct {
	Category      string
	Subcategories []string
}{
	{"General", []string{"Announcements", "Introductions"}},
	{"Technology", []string{"Programming", "Hardware"}},
	{"Off Topic", []string{"Games", "Music"}},
}

// Sections creates DefaultSections when the forum has no categories yet.
func Sections(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, section := range DefaultSections {
			category := &models.Category{Name: section.Category}
			if err := tx.Create(category).Error; err != nil {
				return fmt.Errorf("create category %s: %w", section.Category, err)
			}
			for _, name := range section.Subcategories {
				if err := tx.Create(&models.Subcategory{Name: name, CategoryID: category.ID}).Error; err != nil {
					return fmt.Errorf("create subcategory %s: %w", name, err)
				}
			}
		}
		return nil
	})
}

// Seeder fills a database with fake users and discussions.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts.Seed, opts.SkipBcrypt)}
}

// ClearAll removes every forum row, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.Like{}, &models.Comment{}, &models.Post{}, &models.Topic{},
		&models.Subcategory{}, &models.Category{}, &models.Profile{}, &models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.Info("database cleared")
	return nil
}

// Run creates users, then topics in every subcategory with posts, comments
// and likes spread across those users.
func (s *Seeder) Run(opts Options) error {
	if opts.Users <= 0 {
		return errors.New("seed needs at least one user")
	}
	if err := Sections(s.db); err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}

	var subs []models.Subcategory
	if err := s.db.Find(&subs).Error; err != nil {
		return err
	}

	var topics, posts int
	for i := range subs {
		for t := 0; t < opts.TopicsPerSection; t++ {
			topic, err := s.factory.CreateTopic(&subs[i], Pick(s.factory, users))
			if err != nil {
				return fmt.Errorf("create topic: %w", err)
			}
			topics++
			for p := 0; p < opts.PostsPerTopic; p++ {
				post, err := s.factory.CreatePost(topic, Pick(s.factory, users))
				if err != nil {
					return fmt.Errorf("create post: %w", err)
				}
				posts++
				for c := 0; c < opts.CommentsPerPost; c++ {
					if _, err := s.factory.CreateComment(post, Pick(s.factory, users)); err != nil {
						return fmt.Errorf("create comment: %w", err)
					}
				}
				if err := s.factory.Like(post, Pick(s.factory, users)); err != nil {
					return fmt.Errorf("create like: %w", err)
				}
			}
		}
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", len(users)),
		slog.Int("topics", topics),
		slog.Int("posts", posts))
	return nil
}
