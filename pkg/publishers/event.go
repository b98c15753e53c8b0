package publishers

import (
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

// Event is the payload published downstream for every accepted item.
type Event struct {
	SourceID   string         `json:"source_id"`
	SourceName string         `json:"source_name"`
	Kind       domain.Kind    `json:"kind"`
	Item       domain.Content `json:"item"`
	AcceptedAt time.Time      `json:"accepted_at"`
}

// NewEvent constructs an Event for the given source + item.
func NewEvent(sourceID, sourceName string, item domain.Content) Event {
	return Event{
		SourceID:   sourceID,
		SourceName: sourceName,
		Kind:       item.Kind,
		Item:       item,
		AcceptedAt: time.Now().UTC(),
	}
}
