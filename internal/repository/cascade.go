package repository

import (
	"forum/internal/models"
	"forum/internal/observability"

	"gorm.io/gorm"
)

// The helpers below run inside a caller's transaction and delete children
// before parents: likes, comments, posts, topics. Each adds what it removed to res.

func deletePostsCascade(tx *gorm.DB, postIDs []uint, res *models.CascadeResult) error {
	if len(postIDs) == 0 {
		return nil
	}

	likes := tx.Where("post_id IN ?", postIDs).Delete(&models.Like{})
	if likes.Error != nil {
		return likes.Error
	}
	res.Likes += likes.RowsAffected

	comments := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{})
	if comments.Error != nil {
		return comments.Error
	}
	res.Comments += comments.RowsAffected

	posts := tx.Where("id IN ?", postIDs).Delete(&models.Post{})
	if posts.Error != nil {
		return posts.Error
	}
	res.Posts += posts.RowsAffected
	return nil
}

func deleteTopicsCascade(tx *gorm.DB, topicIDs []uint, res *models.CascadeResult) error {
	if len(topicIDs) == 0 {
		return nil
	}

	var postIDs []uint
	if err := tx.Model(&models.Post{}).Where("topic_id IN ?", topicIDs).Pluck("id", &postIDs).Error; err != nil {
		return err
	}
	if err := deletePostsCascade(tx, postIDs, res); err != nil {
		return err
	}

	topics := tx.Where("id IN ?", topicIDs).Delete(&models.Topic{})
	if topics.Error != nil {
		return topics.Error
	}
	res.Topics += topics.RowsAffected
	return nil
}

func deleteSubcategoriesCascade(tx *gorm.DB, subIDs []uint, res *models.CascadeResult) error {
	if len(subIDs) == 0 {
		return nil
	}

	var topicIDs []uint
	if err := tx.Model(&models.Topic{}).Where("subcategory_id IN ?", subIDs).Pluck("id", &topicIDs).Error; err != nil {
		return err
	}
	if err := deleteTopicsCascade(tx, topicIDs, res); err != nil {
		return err
	}

	subs := tx.Where("id IN ?", subIDs).Delete(&models.Subcategory{})
	if subs.Error != nil {
		return subs.Error
	}
	res.Subcategories += subs.RowsAffected
	return nil
}

func recordCascade(res models.CascadeResult) {
	observability.RecordCascade(map[string]int64{
		"categories":    res.Categories,
		"subcategories": res.Subcategories,
		"topics":        res.Topics,
		"posts":         res.Posts,
		"comments":      res.Comments,
		"likes":         res.Likes,
	})
}
