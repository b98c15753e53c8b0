package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/sources"
)

// ImportRequest is one reviewer-selected candidate handed back from a
// preview. ID and Source echo the Candidate fields.
type ImportRequest struct {
	ID     string         `json:"id"`
	Kind   domain.Kind    `json:"type"`
	Source string         `json:"source"`
	Item   domain.Content `json:"data"`
}

// ImportSelected persists reviewer-selected candidates one by one.
// Every item is handled in isolation: a bad or failing item is recorded
// against that item only and the rest of the batch proceeds. Duplicates
// are reported as skipped, not as failures. Results keep request order.
func (s *Scheduler) ImportSelected(ctx context.Context, reqs []ImportRequest) (*domain.ImportOutcome, error) {
	outcome := &domain.ImportOutcome{
		Timestamp: s.now().UTC(),
		Results:   make([]domain.ImportItemResult, 0, len(reqs)),
	}

	for _, req := range reqs {
		item, err := s.resolveImportItem(req)
		if err != nil {
			outcome.Failed++
			outcome.Results = append(outcome.Results, domain.ImportItemResult{
				Item:  req.ID,
				Error: err.Error(),
			})
			continue
		}

		if s.dedup.IsDuplicate(ctx, item) {
			outcome.Skipped++
			outcome.Results = append(outcome.Results, domain.ImportItemResult{
				Item:      item.Key(),
				Success:   true,
				Duplicate: true,
			})
			continue
		}

		if err := s.store.Save(ctx, item); err != nil {
			perr := &PersistError{Item: item.Key(), Err: err}
			s.log.WarnObj("import save failed", "persist_error", map[string]any{
				"item":  item.Key(),
				"error": perr.Error(),
			})
			outcome.Failed++
			outcome.Results = append(outcome.Results, domain.ImportItemResult{
				Item:  item.Key(),
				Error: perr.Error(),
			})
			continue
		}

		outcome.Imported++
		outcome.Results = append(outcome.Results, domain.ImportItemResult{
			Item:    item.Key(),
			Success: true,
		})
		s.publish(ctx, sources.Source{ID: item.Provenance.Provider, Name: req.Source}, item)
	}

	s.log.InfoObj("manual import completed", "import_result", map[string]any{
		"requested": len(reqs),
		"imported":  outcome.Imported,
		"skipped":   outcome.Skipped,
		"failed":    outcome.Failed,
	})
	return outcome, nil
}

// resolveImportItem validates a request and fills identity fields the
// reviewer payload may omit, so the stored item always carries full
// provenance.
func (s *Scheduler) resolveImportItem(req ImportRequest) (domain.Content, error) {
	item := req.Item

	if item.Title == "" && item.URL == "" {
		return domain.Content{}, fmt.Errorf("import item has neither title nor url")
	}
	if item.Kind == "" {
		item.Kind = req.Kind
	}
	if item.Kind != domain.KindVideo && item.Kind != domain.KindArticle {
		return domain.Content{}, fmt.Errorf("unknown content kind %q", item.Kind)
	}
	if item.Provenance.Provider == "" {
		item.Provenance.Provider = req.Source
	}
	if item.ExternalID == "" {
		if i := strings.IndexByte(req.ID, '/'); i >= 0 && i < len(req.ID)-1 {
			item.ExternalID = req.ID[i+1:]
		}
	}
	if item.Provenance.Provider == "" || item.ExternalID == "" {
		return domain.Content{}, fmt.Errorf("import item %q is missing identity", req.ID)
	}
	if item.Provenance.FetchedAt.IsZero() {
		item.Provenance.FetchedAt = s.now().UTC()
	}
	return item, nil
}
