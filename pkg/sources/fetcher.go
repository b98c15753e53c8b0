package sources

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/httpclient"
)

// Known source types.
const (
	TypeYouTube = "youtube"
	TypeRSSNews = "rss_news"
	TypeVimeo   = "vimeo"
)

// fetcherRegistry implements FetcherRegistry keyed by source type.
type fetcherRegistry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

// NewFetcherRegistry builds a registry for the provided fetcher implementations.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{fetchers: make(map[string]Fetcher)}
	for _, f := range fetchers {
		reg.register(f)
	}
	return reg
}

func (r *fetcherRegistry) register(f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(f.Type()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.fetchers[key] = f
	r.mu.Unlock()
}

// FetcherFor selects the fetcher for the given source based on its type.
// An unknown type resolves to ErrNotImplemented so the orchestrator can
// keep the source visible in run reports.
func (r *fetcherRegistry) FetcherFor(src Source) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	if strings.TrimSpace(src.ID) == "" {
		return nil, fmt.Errorf("source id is empty")
	}

	key := strings.ToLower(strings.TrimSpace(src.Type))
	if key == "" {
		return nil, fmt.Errorf("source %q has no type configured", src.ID)
	}

	r.mu.RLock()
	f, ok := r.fetchers[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source %q type %q: %w", src.ID, src.Type, ErrNotImplemented)
	}
	return f, nil
}

// FetcherOptions carries shared fetcher dependencies resolved at wiring time.
type FetcherOptions struct {
	YouTubeAPIKey string
	Filter        *Filter
}

// DefaultHTTPClient returns a tuned HTTP client for source fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15*time.Second, 2) }

// DefaultFetcherRegistry wires up the known source fetchers. Vimeo is
// declared in rosters but has no working fetcher yet, so it is bound to
// the unimplemented placeholder.
func DefaultFetcherRegistry(client HTTPClient, opts FetcherOptions) FetcherRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if opts.Filter == nil {
		opts.Filter = NewFilter(nil, nil)
	}

	return NewFetcherRegistry(
		NewYouTubeFetcher(client, opts.YouTubeAPIKey, opts.Filter),
		NewRSSNewsFetcher(client, opts.Filter),
		NewUnimplementedFetcher(TypeVimeo),
	)
}
