package policy

import (
	"context"

	"forum/internal/models"
)

// RequireAuthor looks the record up and applies Ownership to it. A failed
// lookup is returned unchanged, so NotFound wins over PermissionDenied.
func RequireAuthor[T models.Authored](ctx context.Context, identity Identity, lookup func(context.Context) (T, error)) (T, error) {
	record, err := lookup(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if d := Ownership(identity, record.AuthorRef()); !d.Allowed() {
		var zero T
		return zero, models.NewPermissionDeniedError(d.Reason)
	}
	return record, nil
}
