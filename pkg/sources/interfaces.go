package sources

import (
	"context"
	"errors"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/httpclient"
)

// ErrNotImplemented marks a source type that is declared in the roster
// but has no working fetcher yet. The orchestrator reports these as an
// explicit not-implemented result rather than dropping them.
var ErrNotImplemented = errors.New("source type not implemented")

// Fetcher retrieves and normalizes candidate items for a source. Fetch
// must never write to the store; persistence belongs to the orchestrator
// so the preview path can reuse fetchers with no side effects. Zero
// results is a valid empty success, not an error.
type Fetcher interface {
	Type() string
	Kind() domain.Kind
	Fetch(ctx context.Context, src Source) ([]domain.Content, error)
}

// FetcherRegistry resolves the fetcher implementation for a given source config.
type FetcherRegistry interface {
	FetcherFor(src Source) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
