package models

import "time"

// Authored is implemented by every record that carries an author and can be
// removed by that author.
type Authored interface {
	AuthorRef() uint
}

// Topic is a discussion thread inside a Subcategory.
type Topic struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Title         string       `gorm:"size:72;not null" json:"title"`
	Content       string       `gorm:"type:text;not null" json:"content"`
	SubcategoryID uint         `gorm:"not null;index" json:"subcategory_id"`
	Subcategory   *Subcategory `gorm:"foreignKey:SubcategoryID;constraint:OnDelete:CASCADE" json:"subcategory,omitempty"`
	AuthorID      uint         `gorm:"not null;index" json:"author_id"`
	Author        *User        `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	// PostsCount is computed at query time.
	PostsCount int       `gorm:"->;-:migration" json:"count_posts"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t *Topic) AuthorRef() uint { return t.AuthorID }

// Post is a reply inside a Topic.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	TopicID  uint      `gorm:"not null;index" json:"topic_id"`
	Topic    *Topic    `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	// LikesCount is computed at query time.
	LikesCount int       `gorm:"->;-:migration" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p *Post) AuthorRef() uint { return p.AuthorID }

// Comment is a short reply attached to a Post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) AuthorRef() uint { return c.AuthorID }

// Like records that a user liked a post. A user likes a given post at most once.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
