// Package notifications publishes forum activity events into Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"forum/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Event types.
const (
	EventPostCreated    = "post_created"
	EventCommentCreated = "comment_created"
	EventTopicDeleted   = "topic_deleted"
)

// Event is the JSON payload published for forum activity.
type Event struct {
	Type      string    `json:"type"`
	TopicID   uint      `json:"topic_id"`
	PostID    uint      `json:"post_id,omitempty"`
	CommentID uint      `json:"comment_id,omitempty"`
	ActorID   uint      `json:"actor_id"`
	At        time.Time `json:"at"`
}

// Publisher is what services depend on; Notifier is the Redis implementation.
type Publisher interface {
	PublishTopic(ctx context.Context, ev Event) error
	PublishUser(ctx context.Context, userID uint, ev Event) error
}

// Notifier provides helpers to publish events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client makes every publish a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// TopicChannel is the channel carrying activity inside one topic.
func TopicChannel(topicID uint) string {
	return fmt.Sprintf("forum:topic:%d", topicID)
}

// UserChannel is the channel carrying notifications addressed to one user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// PublishTopic sends ev to the topic's channel.
func (n *Notifier) PublishTopic(ctx context.Context, ev Event) error {
	return n.publish(ctx, TopicChannel(ev.TopicID), ev)
}

// PublishUser sends ev to userID's notification channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, ev Event) error {
	return n.publish(ctx, UserChannel(userID), ev)
}

func (n *Notifier) publish(ctx context.Context, channel string, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return err
	}
	observability.EventsPublished.WithLabelValues(ev.Type).Inc()
	return nil
}
