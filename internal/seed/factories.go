// Package seed creates demo data for development databases. These helpers
// are intended for development and testing only.
package seed

import (
	"fmt"

	"forum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded user gets.
const DemoPassword = "Password-123"

// Factory builds forum entities with fake content and persists them.
type Factory struct {
	db         *gorm.DB
	faker      *gofakeit.Faker
	skipBcrypt bool
	password   string
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, skipBcrypt bool) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), skipBcrypt: skipBcrypt}
}

func (f *Factory) hashedPassword() (string, error) {
	if f.skipBcrypt {
		return DemoPassword, nil
	}
	if f.password == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		f.password = string(hashed)
	}
	return f.password, nil
}

// CreateUser persists a user with a filled profile.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	password, err := f.hashedPassword()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: truncate(f.faker.Username()+fmt.Sprintf("%d", f.faker.Number(100, 999)), 150),
		Email:    f.faker.Email(),
		Password: password,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}

	profile := &models.Profile{
		FirstName: truncate(f.faker.FirstName(), 20),
		LastName:  truncate(f.faker.LastName(), 20),
		Bio:       truncate(f.faker.Sentence(12), 252),
		UserID:    user.ID,
		Filled:    true,
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// CreateTopic persists a topic in sub.
func (f *Factory) CreateTopic(sub *models.Subcategory, author *models.User) (*models.Topic, error) {
	topic := &models.Topic{
		Title:         truncate(f.faker.Sentence(5), 72),
		Content:       truncate(f.faker.Paragraph(1, 3, 8, "\n"), 1000),
		SubcategoryID: sub.ID,
		AuthorID:      author.ID,
	}
	if err := f.db.Create(topic).Error; err != nil {
		return nil, err
	}
	return topic, nil
}

// CreatePost persists a reply in topic.
func (f *Factory) CreatePost(topic *models.Topic, author *models.User) (*models.Post, error) {
	post := &models.Post{
		Content:  truncate(f.faker.Paragraph(1, 2, 10, "\n"), 1000),
		TopicID:  topic.ID,
		AuthorID: author.ID,
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on post.
func (f *Factory) CreateComment(post *models.Post, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		Content:  truncate(f.faker.Sentence(10), 1000),
		PostID:   post.ID,
		AuthorID: author.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Like records that user liked post. Existing likes are left alone.
func (f *Factory) Like(post *models.Post, user *models.User) error {
	var count int64
	if err := f.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", post.ID, user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return f.db.Create(&models.Like{PostID: post.ID, UserID: user.ID}).Error
}

// Pick returns a random element of items.
func Pick[T any](f *Factory, items []T) T {
	return items[f.faker.IntRange(0, len(items)-1)]
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
