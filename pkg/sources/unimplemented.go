package sources

import (
	"context"
	"fmt"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

// unimplementedFetcher is the placeholder bound to declared source types
// that have no working adapter yet. It keeps those sources visible in
// run reports with a fixed not-implemented status instead of burying
// placeholder logic inside a real adapter.
type unimplementedFetcher struct {
	typ string
}

// NewUnimplementedFetcher returns the placeholder fetcher for a type.
func NewUnimplementedFetcher(typ string) Fetcher {
	return &unimplementedFetcher{typ: typ}
}

func (f *unimplementedFetcher) Type() string      { return f.typ }
func (f *unimplementedFetcher) Kind() domain.Kind { return domain.KindVideo }

func (f *unimplementedFetcher) Fetch(_ context.Context, src Source) ([]domain.Content, error) {
	return nil, fmt.Errorf("source %q type %q: %w", src.ID, f.typ, ErrNotImplemented)
}
