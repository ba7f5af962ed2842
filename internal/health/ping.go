package health

import "context"

// HealthPinger is implemented by components that can probe their own backend,
// such as the store (database ping) and the auth client (backend reachability).
// A nil return means healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
