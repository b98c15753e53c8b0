package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

// Package storage provides the local document store behind dedup and commits.

// Query is a disjunction of identity predicates: any populated key that
// matches an existing document satisfies the query.
type Query struct {
	Provider   string
	ExternalID string
	URL        string
	Slug       string
}

// Store is a keyed document collection per content kind.
type Store interface {
	// FindOne returns the first document matching any identity key, or
	// nil when nothing matches.
	FindOne(ctx context.Context, kind domain.Kind, q Query) (*domain.Content, error)
	Save(ctx context.Context, c domain.Content) error
	Count(ctx context.Context, kind domain.Kind) (int, error)
	Close() error
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) FindOne(context.Context, domain.Kind, Query) (*domain.Content, error) {
	return nil, nil
}
func (noopStore) Save(context.Context, domain.Content) error       { return nil }
func (noopStore) Count(context.Context, domain.Kind) (int, error)  { return 0, nil }
func (noopStore) Close() error                                     { return nil }
