package sources

import (
	"testing"
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

func TestFilterMatchesVocabularyTerms(t *testing.T) {
	f := NewFilter(nil, nil)

	cases := []struct {
		text string
		want bool
	}{
		{"SpaceX Starship completes orbital flight", true},
		{"NASA announces Artemis crew", true},
		{"Ten pasta recipes for busy weeknights", false},
		{"FALCON 9 BOOSTER LANDS AGAIN", true},
		{"", false},
	}
	for _, tc := range cases {
		if got := f.Match(tc.text); got != tc.want {
			t.Fatalf("Match(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestFilterShortTokensRequireWordBoundaries(t *testing.T) {
	f := NewFilter(nil, nil)

	// "iss" and "eva" hide inside everyday words; only standalone
	// occurrences count.
	rejected := []string{
		"Local bakery wins award Coverage of the mission.",
		"Permission slip reminder for parents",
		"Council dismisses complaint over noise",
		"Committee will evaluate the proposal tomorrow",
	}
	for _, text := range rejected {
		if f.Match(text) {
			t.Fatalf("Match(%q) = true, want false", text)
		}
	}

	accepted := []string{
		"ISS resupply craft arrives",
		"Crew begins EVA outside the station",
		"Astronauts complete the EVA",
		"ESA confirms the flight schedule",
	}
	for _, text := range accepted {
		if !f.Match(text) {
			t.Fatalf("Match(%q) = false, want true", text)
		}
	}
}

func TestFilterExcludeOverridesInclude(t *testing.T) {
	f := NewFilter(nil, []string{"fortnite"})

	if f.Match("Rocket launch event in Fortnite tonight") {
		t.Fatalf("excluded term must reject even with a vocabulary hit")
	}
	if !f.Match("Rocket launch scrubbed due to weather") {
		t.Fatalf("expected plain vocabulary hit to pass")
	}
}

func TestFilterExtraKeywordsExtendVocabulary(t *testing.T) {
	f := NewFilter([]string{"firefly aerospace"}, nil)

	if !f.Match("Firefly Aerospace sets new mission date") {
		t.Fatalf("expected extra keyword to match")
	}
}

func TestScoreFavorsFreshHighEngagementContent(t *testing.T) {
	r := NewRanker(NewFilter(nil, nil), nil)
	now := time.Now()

	strong := domain.Content{
		Title:       "Starship launch replay",
		Author:      "SpaceX",
		Engagement:  90000,
		PublishedAt: now.Add(-1 * time.Hour),
	}
	weak := domain.Content{
		Title:       "Some unrelated clip",
		PublishedAt: now.Add(-100 * time.Hour),
	}

	hi, lo := r.Score(strong, now), r.Score(weak, now)
	if hi <= lo {
		t.Fatalf("expected fresh relevant content to outrank stale irrelevant: %v <= %v", hi, lo)
	}
	if hi > 1 || lo < 0 {
		t.Fatalf("scores must stay in [0,1]: hi=%v lo=%v", hi, lo)
	}
}

func TestScoreRecencyDecaysToZero(t *testing.T) {
	r := NewRanker(nil, nil)
	now := time.Now()

	recent := domain.Content{PublishedAt: now.Add(-1 * time.Hour)}
	old := domain.Content{PublishedAt: now.Add(-80 * time.Hour)}

	if r.Score(recent, now) <= r.Score(old, now) {
		t.Fatalf("expected recency bonus to decay with age")
	}
	if got := r.Score(old, now); got != 0 {
		t.Fatalf("expected zero score beyond the recency horizon, got %v", got)
	}
}

func TestScoreTrustedAuthorBonus(t *testing.T) {
	r := NewRanker(nil, []string{"orbitwire picks"})
	now := time.Now()
	published := now.Add(-200 * time.Hour) // outside recency horizon, isolates the bonus

	base := domain.Content{Title: "plain", PublishedAt: published}
	trusted := base
	trusted.Author = "Everyday Astronaut"
	custom := base
	custom.Author = "OrbitWire Picks"

	if r.Score(trusted, now) <= r.Score(base, now) {
		t.Fatalf("expected default trusted author bonus")
	}
	if r.Score(custom, now) <= r.Score(base, now) {
		t.Fatalf("expected configured trusted author bonus")
	}
}
