package dedup

import (
	"context"
	"fmt"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/logger"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/storage"
)

// CheckError is an identity-check infrastructure failure. It is logged
// as a warning and never blocks a save.
type CheckError struct {
	Item string
	Err  error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("dedup check for %s: %v", e.Item, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Deduplicator checks a candidate against the store by its identity keys:
// provider+externalID, canonical URL, and title slug.
type Deduplicator struct {
	store storage.Store
	log   logger.Logger
}

// New builds a deduplicator over the given store.
func New(store storage.Store, log logger.Logger) *Deduplicator {
	return &Deduplicator{store: store, log: logger.Ensure(log)}
}

// IsDuplicate reports whether any identity key of the candidate already
// exists. A store error is treated as "not confirmed duplicate" and the
// item proceeds to save: failing open means a transient store outage can
// admit duplicates but never silently blocks all new content. Callers
// must re-check immediately before every commit, never ahead of a batch,
// so manual imports interleaving with runs stay correct.
func (d *Deduplicator) IsDuplicate(ctx context.Context, c domain.Content) bool {
	if d == nil || d.store == nil {
		return false
	}

	q := storage.Query{
		Provider:   c.Provenance.Provider,
		ExternalID: c.ExternalID,
		URL:        c.URL,
		Slug:       domain.Slug(c.Title),
	}

	found, err := d.store.FindOne(ctx, c.Kind, q)
	if err != nil {
		cerr := &CheckError{Item: c.Key(), Err: err}
		d.log.WarnObj("dedup check failed, treating as new", "dedup_error", map[string]any{
			"item":  c.Key(),
			"error": cerr.Error(),
		})
		return false
	}
	return found != nil
}
