package sources

import (
	"math"
	"strings"
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

// Ranking weights. The score orders preview candidates only; the
// relevance filter remains the sole hard gate.
const (
	recencyWeight    = 0.4
	engagementWeight = 0.3
	titleWeight      = 0.2
	trustedWeight    = 0.1

	recencyHorizon       = 72 * time.Hour
	engagementCeiling    = 100000.0
	engagementLogCeiling = 5.0 // log10 of engagementCeiling
)

// DefaultTrustedAuthors are channel/outlet names that earn the
// trusted-source bonus.
var DefaultTrustedAuthors = []string{
	"nasa", "spacex", "esa", "rocket lab", "everyday astronaut",
	"nasaspaceflight", "scott manley", "spacenews", "ars technica",
}

// Ranker computes the additive preview score for a candidate.
type Ranker struct {
	filter  *Filter
	trusted []string
}

// NewRanker builds a ranker over the given relevance filter. Extra
// trusted author names extend the default list.
func NewRanker(filter *Filter, trustedAuthors []string) *Ranker {
	trusted := make([]string, 0, len(DefaultTrustedAuthors)+len(trustedAuthors))
	for _, a := range DefaultTrustedAuthors {
		trusted = append(trusted, strings.ToLower(a))
	}
	for _, a := range trustedAuthors {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			trusted = append(trusted, a)
		}
	}
	return &Ranker{filter: filter, trusted: trusted}
}

// Score returns the candidate's preview rank in [0,1]: recency bonus,
// engagement bonus, keyword-in-title bonus, trusted-author bonus.
func (r *Ranker) Score(c domain.Content, now time.Time) float64 {
	score := r.recencyBonus(c.PublishedAt, now) +
		r.engagementBonus(c.Engagement) +
		r.titleBonus(c.Title) +
		r.trustedBonus(c.Author)

	return math.Min(1, math.Max(0, score))
}

func (r *Ranker) recencyBonus(published, now time.Time) float64 {
	if published.IsZero() || published.After(now) {
		return 0
	}
	age := now.Sub(published)
	if age >= recencyHorizon {
		return 0
	}
	return recencyWeight * (1 - float64(age)/float64(recencyHorizon))
}

func (r *Ranker) engagementBonus(engagement int) float64 {
	if engagement <= 0 {
		return 0
	}
	ratio := math.Log10(float64(engagement)+1) / engagementLogCeiling
	if ratio > 1 {
		ratio = 1
	}
	return engagementWeight * ratio
}

func (r *Ranker) titleBonus(title string) float64 {
	if r.filter != nil && r.filter.MatchTitle(title) {
		return titleWeight
	}
	return 0
}

func (r *Ranker) trustedBonus(author string) float64 {
	author = strings.ToLower(strings.TrimSpace(author))
	if author == "" {
		return 0
	}
	for _, t := range r.trusted {
		if strings.Contains(author, t) {
			return trustedWeight
		}
	}
	return 0
}
