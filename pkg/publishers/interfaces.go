package publishers

import "context"

// Publisher sends accepted-item events to a downstream sink (HTTP, queue).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
