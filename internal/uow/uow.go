package uow

import (
	"context"
)

// AfterCommit is a function that runs after a successful commit.
type AfterCommit func(ctx context.Context)

// UoW groups a store write with side effects that must only happen once the
// write is durable, such as publishing events. The write itself is atomic in
// the store; UoW only sequences the hooks.
type UoW struct{}

func NewUoW() *UoW {
	return &UoW{}
}

// Do runs fn. After fn returns nil, it executes all registered hooks in order.
// Hooks registered by a failing fn are discarded.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	err := fn(ctx, func(h AfterCommit) {
		hooks = append(hooks, h)
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
