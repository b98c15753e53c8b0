package domain

import "time"

// Kind identifies which content family an item belongs to.
type Kind string

const (
	KindVideo   Kind = "video"
	KindArticle Kind = "article"
)

// Provenance records where and when an item was fetched.
type Provenance struct {
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Content is the normalized candidate shape every adapter produces.
// ExternalID is unique within a provider; Provider+ExternalID is the
// primary identity of a stored record.
type Content struct {
	ExternalID  string     `json:"external_id"`
	Kind        Kind       `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Author      string     `json:"author"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Engagement  int        `json:"engagement"`
	PublishedAt time.Time  `json:"published_at"`
	Provenance  Provenance `json:"provenance"`
}

// Key returns the provider-scoped identity of the item.
func (c Content) Key() string {
	return c.Provenance.Provider + "/" + c.ExternalID
}

// AggregationResult is the per-provider outcome of one run. Success=false
// always means the provider's items were not committed this run.
type AggregationResult struct {
	Provider  string    `json:"provider"`
	Success   bool      `json:"success"`
	Count     int       `json:"count"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AggregationLog is the per-run record kept in the in-memory history.
// It is never mutated after being appended.
type AggregationLog struct {
	Date         time.Time           `json:"date"`
	Results      []AggregationResult `json:"results"`
	TotalItems   int                 `json:"total_items"`
	SuccessCount int                 `json:"success_count"`
	FailureCount int                 `json:"failure_count"`
}

// ImportItemResult records the outcome for one requested item of a
// selective import, in request order.
type ImportItemResult struct {
	Item      string `json:"item"`
	Success   bool   `json:"success"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ImportOutcome summarizes one ImportSelected call. Duplicates are
// skipped, so they count toward neither Imported nor Failed.
type ImportOutcome struct {
	Timestamp time.Time          `json:"timestamp"`
	Imported  int                `json:"imported"`
	Failed    int                `json:"failed"`
	Skipped   int                `json:"skipped"`
	Results   []ImportItemResult `json:"results"`
}
