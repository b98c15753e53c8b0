package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

// Candidate is one previewed item together with its relevance score and
// the identity a later import request must echo back.
type Candidate struct {
	ID     string         `json:"id"`
	Kind   domain.Kind    `json:"type"`
	Source string         `json:"source"`
	Score  float64        `json:"score"`
	Item   domain.Content `json:"data"`
}

// PreviewResult is the editorial review payload: scored candidates split
// by kind, best first.
type PreviewResult struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Videos      []Candidate `json:"videos"`
	Articles    []Candidate `json:"articles"`
	TotalItems  int         `json:"total_items"`
}

// Preview fetches and scores candidates from every enabled source
// without writing anything: no saves, no history entry, and no run-state
// flag, so it may overlap a scheduled run freely. Source failures are
// logged and skipped rather than failing the whole preview.
func (s *Scheduler) Preview(ctx context.Context) (*PreviewResult, error) {
	roster := s.registry.Enabled()
	outcomes := s.scatter(ctx, roster)

	now := s.now().UTC()
	var videos, articles []Candidate
	for _, oc := range outcomes {
		if oc.err != nil {
			s.log.WarnObj("preview source skipped", "source_error", map[string]any{
				"source_id": oc.src.ID,
				"error":     oc.err.Error(),
			})
			continue
		}

		items := oc.items
		if s.enricher != nil {
			items = s.enricher.Enrich(ctx, items)
		}

		for _, item := range items {
			if s.filter != nil && !s.filter.Match(item.Title+" "+item.Description) {
				continue
			}
			cand := Candidate{
				ID:     item.Key(),
				Kind:   item.Kind,
				Source: oc.src.ID,
				Score:  s.ranker.Score(item, now),
				Item:   item,
			}
			if item.Kind == domain.KindVideo {
				videos = append(videos, cand)
			} else {
				articles = append(articles, cand)
			}
		}
	}

	sortByScore(videos)
	sortByScore(articles)

	return &PreviewResult{
		GeneratedAt: now,
		Videos:      videos,
		Articles:    articles,
		TotalItems:  len(videos) + len(articles),
	}, nil
}

func sortByScore(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
}
