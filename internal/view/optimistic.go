package view

import (
	"context"
	"sync"

	"pingme/internal/observability"
)

// update is one optimistic change. apply, commit and rollback run with the
// view mutex held; confirm runs without it.
type update struct {
	view     string
	action   string
	apply    func()
	confirm  func(ctx context.Context) error
	commit   func()
	rollback func()
}

// optimistic applies the change locally, confirms it with the provider and
// then commits or rolls back.
func optimistic(ctx context.Context, mu *sync.Mutex, u update) error {
	ctx, span := observability.StartViewSpan(ctx, u.view, u.action)

	mu.Lock()
	if u.apply != nil {
		u.apply()
	}
	mu.Unlock()

	err := u.confirm(ctx)

	mu.Lock()
	if err != nil {
		if u.rollback != nil {
			u.rollback()
		}
	} else if u.commit != nil {
		u.commit()
	}
	mu.Unlock()

	if err != nil {
		observability.RecordRollback(u.view, u.action)
		observability.Logger.WarnContext(ctx, "optimistic update rolled back",
			"view", u.view,
			"action", u.action,
			"error", err,
		)
	}
	observability.EndSpan(span, err)
	return err
}
