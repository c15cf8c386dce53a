// Package testutil provides shared fixtures for tests that need a real database.
package testutil

import (
	"fmt"
	"testing"

	"forum/internal/database"
	"forum/internal/middleware"
	"forum/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated, private in-memory SQLite database that is closed
// when the test ends. Only one connection is kept open, so code running inside
// a transaction must use the transaction handle.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         database.NewGormLogger(middleware.Logger).LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given username and no profile.
func CreateUser(t testing.TB, db *gorm.DB, username string, superuser bool) *models.User {
	t.Helper()
	u := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "x",
		IsSuperuser: superuser,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateProfile attaches a filled profile to user.
func CreateProfile(t testing.TB, db *gorm.DB, user *models.User) *models.Profile {
	t.Helper()
	p := &models.Profile{
		FirstName: "Test",
		LastName:  user.Username,
		Bio:       models.DefaultBio,
		UserID:    user.ID,
		Filled:    true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create profile for %s: %v", user.Username, err)
	}
	user.Profile = p
	return p
}

// Tree is a category with one subcategory, used as the home for test topics.
type Tree struct {
	Category    *models.Category
	Subcategory *models.Subcategory
}

// CreateTree inserts a category and one subcategory with derived slugs.
func CreateTree(t testing.TB, db *gorm.DB, category, subcategory string) Tree {
	t.Helper()
	c := &models.Category{Name: category}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create category %s: %v", category, err)
	}
	s := &models.Subcategory{Name: subcategory, CategoryID: c.ID}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create subcategory %s: %v", subcategory, err)
	}
	return Tree{Category: c, Subcategory: s}
}

// CreateTopic inserts a topic in sub authored by author.
func CreateTopic(t testing.TB, db *gorm.DB, sub *models.Subcategory, author *models.User, title string) *models.Topic {
	t.Helper()
	topic := &models.Topic{Title: title, Content: title + " content", SubcategoryID: sub.ID, AuthorID: author.ID}
	if err := db.Create(topic).Error; err != nil {
		t.Fatalf("create topic %s: %v", title, err)
	}
	return topic
}

// CreatePost inserts a post in topic authored by author.
func CreatePost(t testing.TB, db *gorm.DB, topic *models.Topic, author *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{Content: content, TopicID: topic.ID, AuthorID: author.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// CreateComment inserts a comment on post authored by author.
func CreateComment(t testing.TB, db *gorm.DB, post *models.Post, author *models.User, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{Content: content, PostID: post.ID, AuthorID: author.ID}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}

// CreateLike records that user liked post.
func CreateLike(t testing.TB, db *gorm.DB, post *models.Post, user *models.User) *models.Like {
	t.Helper()
	like := &models.Like{PostID: post.ID, UserID: user.ID}
	if err := db.Create(like).Error; err != nil {
		t.Fatalf("create like: %v", err)
	}
	return like
}
