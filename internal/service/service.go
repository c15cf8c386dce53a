// Package service holds the forum's use cases. Every mutating call takes the
// caller's policy.Identity explicitly; ownership is checked here, profile
// gating is left to the HTTP layer.
package service

import (
	"context"
	"log/slog"
	"strconv"

	"forum/internal/featureflags"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/notifications"
	"forum/internal/policy"
)

// PostsPerPage is the topic page size.
const PostsPerPage = 10

// Page describes one page of a paginated listing.
type Page struct {
	Number   int   `json:"number"`
	NumPages int   `json:"num_pages"`
	Total    int64 `json:"total"`
	HasPrev  bool  `json:"has_previous"`
	HasNext  bool  `json:"has_next"`
}

// Offset is the row offset of the page.
func (p Page) Offset(size int) int { return (p.Number - 1) * size }

// Paginate resolves a raw page parameter. A value that is not a number
// selects page 1; a number outside 1..NumPages selects the last page. There
// is always at least one page.
func Paginate(total int64, raw string, size int) Page {
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return Page{
		Number:   number,
		NumPages: numPages,
		Total:    total,
		HasPrev:  number > 1,
		HasNext:  number < numPages,
	}
}

// events publishes forum activity when the flag allows. Failures are logged
// and never fail the request.
type events struct {
	pub   notifications.Publisher
	flags *featureflags.Manager
}

func (e events) topic(ctx context.Context, ev notifications.Event) {
	if e.pub == nil || !e.flags.Enabled(featureflags.EventPublishing, ev.ActorID) {
		return
	}
	if err := e.pub.PublishTopic(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "publish topic event failed",
			slog.String("event", ev.Type), slog.String("error", err.Error()))
	}
}

// user notifies recipient unless they caused the event.
func (e events) user(ctx context.Context, recipient uint, ev notifications.Event) {
	if e.pub == nil || recipient == ev.ActorID || !e.flags.Enabled(featureflags.EventPublishing, ev.ActorID) {
		return
	}
	if err := e.pub.PublishUser(ctx, recipient, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "publish user event failed",
			slog.String("event", ev.Type), slog.String("error", err.Error()))
	}
}

func requireSuperuser(identity policy.Identity) error {
	if !identity.Superuser {
		return models.NewPermissionDeniedError(policy.PermissionMessage)
	}
	return nil
}
