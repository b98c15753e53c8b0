package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/dedup"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/logger"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/storage"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/publishers"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/sources"
)

const (
	defaultHistoryLimit  = 20
	defaultSourceTimeout = 30 * time.Second
	notImplementedStatus = "not implemented"
)

// ContentEnricher backfills missing candidate metadata on the preview path.
type ContentEnricher interface {
	Enrich(ctx context.Context, items []domain.Content) []domain.Content
}

// EventPublisher fans accepted-item events out to downstream sinks.
// *publishers.Fanout satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
}

// Options carries the optional collaborators and tunables.
type Options struct {
	Filter        *sources.Filter
	Ranker        *sources.Ranker
	Enricher      ContentEnricher
	Fanout        EventPublisher
	HistoryLimit  int
	SourceTimeout time.Duration
	Now           func() time.Time
}

// Scheduler is the aggregation orchestrator. It exclusively owns the
// run-state flag and the in-memory run history; adapters and stores
// never touch either.
type Scheduler struct {
	registry *sources.Registry
	fetchers sources.FetcherRegistry
	store    storage.Store
	dedup    *dedup.Deduplicator
	filter   *sources.Filter
	ranker   *sources.Ranker
	enricher ContentEnricher
	fanout   EventPublisher
	log      logger.Logger
	now      func() time.Time

	sourceTimeout time.Duration
	historyLimit  int

	mu      sync.Mutex
	running bool
	history []domain.AggregationLog
}

// New wires a scheduler over the source registry, fetcher registry, and store.
func New(registry *sources.Registry, fetchers sources.FetcherRegistry, store storage.Store, log logger.Logger, opts Options) *Scheduler {
	log = logger.Ensure(log)

	if opts.Filter == nil {
		opts.Filter = sources.NewFilter(nil, nil)
	}
	if opts.Ranker == nil {
		opts.Ranker = sources.NewRanker(opts.Filter, nil)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = defaultSourceTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Scheduler{
		registry:      registry,
		fetchers:      fetchers,
		store:         store,
		dedup:         dedup.New(store, log),
		filter:        opts.Filter,
		ranker:        opts.Ranker,
		enricher:      opts.Enricher,
		fanout:        opts.Fanout,
		log:           log,
		now:           opts.Now,
		sourceTimeout: opts.SourceTimeout,
		historyLimit:  opts.HistoryLimit,
	}
}

// RunAggregation executes one full aggregation pass: concurrent fan-out
// to every enabled source, relevance gating, dedup, commit, downstream
// publish, and a history entry. At most one run is in flight at a time;
// concurrent callers get ErrAlreadyRunning immediately.
func (s *Scheduler) RunAggregation(ctx context.Context) (*domain.AggregationLog, error) {
	if s == nil || s.registry == nil || s.fetchers == nil {
		return nil, fmt.Errorf("scheduler is not initialized")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	started := s.now().UTC()
	roster := s.registry.Enabled()
	s.log.InfoObj("aggregation run started", "run_meta", map[string]any{
		"sources_count": len(roster),
		"started_at":    started,
	})

	outcomes := s.scatter(ctx, roster)

	results := make([]domain.AggregationResult, 0, len(roster))
	totalItems, successCount, failureCount := 0, 0, 0
	for _, oc := range outcomes {
		res := domain.AggregationResult{
			Provider:  oc.src.ID,
			Timestamp: s.now().UTC(),
		}
		switch {
		case oc.err != nil && errors.Is(oc.err, sources.ErrNotImplemented):
			res.Error = notImplementedStatus
		case oc.err != nil:
			res.Error = oc.err.Error()
			s.log.ErrorObj("source aggregation failed", "source_error", map[string]any{
				"source_id": oc.src.ID,
				"error":     oc.err.Error(),
			})
		default:
			res.Success = true
			res.Count = s.commitAll(ctx, oc.src, oc.items)
			totalItems += res.Count
		}

		if res.Success {
			successCount++
		} else {
			failureCount++
		}
		results = append(results, res)
	}

	entry := domain.AggregationLog{
		Date:         started,
		Results:      results,
		TotalItems:   totalItems,
		SuccessCount: successCount,
		FailureCount: failureCount,
	}
	s.appendHistory(entry)

	s.log.InfoObj("aggregation run completed", "run_result", map[string]any{
		"total_items":   totalItems,
		"success_count": successCount,
		"failure_count": failureCount,
		"elapsed_ms":    s.now().Sub(started).Milliseconds(),
	})
	return &entry, nil
}

// fetchOutcome is one source's share of a scatter/gather pass.
type fetchOutcome struct {
	src   sources.Source
	items []domain.Content
	err   error
}

// scatter fans out one goroutine per source and waits for all of them
// to settle. Outcomes land at their roster index, so reporting order is
// fixed regardless of completion order, and a panic or failure in one
// source never cancels the others.
func (s *Scheduler) scatter(ctx context.Context, roster []sources.Source) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(roster))

	var wg sync.WaitGroup
	for i, src := range roster {
		outcomes[i].src = src

		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i].err = &ProviderError{Provider: src.ID, Err: fmt.Errorf("fetch panicked: %v", r)}
				}
			}()

			fetchCtx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
			defer cancel()

			fetcher, err := s.fetchers.FetcherFor(src)
			if err != nil {
				outcomes[i].err = &ProviderError{Provider: src.ID, Err: err}
				return
			}

			items, err := fetcher.Fetch(fetchCtx, src)
			if err != nil {
				outcomes[i].err = &ProviderError{Provider: src.ID, Err: err}
				return
			}
			outcomes[i].items = items
		}(i, src)
	}
	wg.Wait()

	return outcomes
}

// commitAll gates, dedups, and saves one source's candidates, returning
// the number committed. The dedup check runs immediately before each
// save, never ahead of the batch, so interleaved manual imports stay
// correct.
func (s *Scheduler) commitAll(ctx context.Context, src sources.Source, items []domain.Content) int {
	committed := 0
	for _, item := range items {
		if s.filter != nil && !s.filter.Match(item.Title+" "+item.Description) {
			continue
		}
		if s.dedup.IsDuplicate(ctx, item) {
			continue
		}
		if err := s.store.Save(ctx, item); err != nil {
			perr := &PersistError{Item: item.Key(), Err: err}
			s.log.WarnObj("item save failed", "persist_error", map[string]any{
				"source_id": src.ID,
				"item":      item.Key(),
				"error":     perr.Error(),
			})
			continue
		}
		committed++
		s.publish(ctx, src, item)
	}
	return committed
}

// publish forwards a committed item downstream. The save already
// happened, so a sink failure is logged but does not fail the item.
func (s *Scheduler) publish(ctx context.Context, src sources.Source, item domain.Content) {
	if s.fanout == nil || s.fanout.Size() == 0 {
		return
	}
	if _, err := s.fanout.Publish(ctx, publishers.NewEvent(src.ID, src.Name, item)); err != nil {
		s.log.WarnObj("downstream publish failed", "publish_error", map[string]any{
			"source_id": src.ID,
			"item":      item.Key(),
			"error":     err.Error(),
		})
	}
}

func (s *Scheduler) appendHistory(entry domain.AggregationLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, entry)
	if len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}
}

// Status is a point-in-time snapshot of the orchestrator's state.
type Status struct {
	Running        bool                   `json:"running"`
	HistorySize    int                    `json:"history_size"`
	LastRun        *domain.AggregationLog `json:"last_run,omitempty"`
	StoredVideos   int                    `json:"stored_videos"`
	StoredArticles int                    `json:"stored_articles"`
}

// GetStatus reports run-state and store counts. Read-only.
func (s *Scheduler) GetStatus(ctx context.Context) Status {
	st := Status{LastRun: s.LatestLog()}

	s.mu.Lock()
	st.Running = s.running
	st.HistorySize = len(s.history)
	s.mu.Unlock()

	if s.store != nil {
		if n, err := s.store.Count(ctx, domain.KindVideo); err == nil {
			st.StoredVideos = n
		}
		if n, err := s.store.Count(ctx, domain.KindArticle); err == nil {
			st.StoredArticles = n
		}
	}
	return st
}

// Logs returns a copy of the run history, oldest first.
func (s *Scheduler) Logs() []domain.AggregationLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AggregationLog, len(s.history))
	copy(out, s.history)
	return out
}

// LatestLog returns the most recent run record, or nil when no run has
// completed yet.
func (s *Scheduler) LatestLog() *domain.AggregationLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return nil
	}
	last := s.history[len(s.history)-1]
	return &last
}
