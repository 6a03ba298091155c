package favorite

import "context"

// Repository persists favorites. Add is insert-or-ignore on EventID.
type Repository interface {
	Add(ctx context.Context, item Favorite) error
	Remove(ctx context.Context, eventID string) error
	List(ctx context.Context) ([]Favorite, error)
	Exists(ctx context.Context, eventID string) (bool, error)
}
