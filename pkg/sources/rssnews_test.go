package sources

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

func feedXML(entries string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Orbit Report</title>
<link>https://news.example</link>
` + entries + `
</channel></rss>`
}

func feedEntry(guid, title, link string, published time.Time) string {
	return fmt.Sprintf(`<item>
<guid>%s</guid>
<title>%s</title>
<link>%s</link>
<description>Coverage of the mission.</description>
<pubDate>%s</pubDate>
</item>`, guid, title, link, published.Format(time.RFC1123Z))
}

func TestRSSNewsFetchParsesAndGates(t *testing.T) {
	now := time.Now()
	body := feedXML(
		feedEntry("a1", "Falcon 9 launches 23 Starlink satellites", "https://news.example/a1", now.Add(-2*time.Hour)) +
			feedEntry("a2", "Local bakery wins award", "https://news.example/a2", now.Add(-3*time.Hour)) +
			feedEntry("a3", "NASA confirms Artemis crew rotation", "https://news.example/a3", now.Add(-90*time.Hour)),
	)

	client := &fakeClient{responses: map[string]fakeResponse{
		"https://news.example/rss": {status: 200, body: []byte(body)},
	}}

	f := NewRSSNewsFetcher(client, NewFilter(nil, nil))
	src := Source{ID: "orbit-report", Name: "Orbit Report", Type: TypeRSSNews,
		Config: map[string]any{"feed_url": "https://news.example/rss"}}

	items, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// a2 fails relevance, a3 is outside the default 48h window.
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.ExternalID != "a1" || item.Kind != domain.KindArticle {
		t.Fatalf("unexpected identity: %+v", item)
	}
	if item.URL != "https://news.example/a1" {
		t.Fatalf("unexpected url: %s", item.URL)
	}
	if item.Thumbnail != defaultThumbnailURL {
		t.Fatalf("expected placeholder thumbnail for imageless entry, got %s", item.Thumbnail)
	}
	if item.Provenance.Provider != "orbit-report" {
		t.Fatalf("unexpected provenance: %+v", item.Provenance)
	}
}

func TestRSSNewsFetchHonorsMaxResults(t *testing.T) {
	now := time.Now()
	entries := ""
	for i := 0; i < 5; i++ {
		entries += feedEntry(
			fmt.Sprintf("a%d", i),
			fmt.Sprintf("Rocket launch update %d", i),
			fmt.Sprintf("https://news.example/a%d", i),
			now.Add(-time.Duration(i)*time.Hour),
		)
	}

	client := &fakeClient{responses: map[string]fakeResponse{
		"https://news.example/rss": {status: 200, body: []byte(feedXML(entries))},
	}}

	f := NewRSSNewsFetcher(client, NewFilter(nil, nil))
	src := Source{ID: "orbit-report", Type: TypeRSSNews,
		Config: map[string]any{"feed_url": "https://news.example/rss", "max_results": 2}}

	items, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected max_results cap of 2, got %d", len(items))
	}
}

func TestRSSNewsFetchRequiresFeedURL(t *testing.T) {
	f := NewRSSNewsFetcher(&fakeClient{}, nil)
	if _, err := f.Fetch(context.Background(), Source{ID: "feed", Type: TypeRSSNews}); err == nil {
		t.Fatalf("expected missing feed_url error")
	}
}

func TestRSSNewsFetchFailsOnUnparsableFeed(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		"https://news.example/rss": {status: 200, body: []byte("<html>not a feed</html>")},
	}}

	f := NewRSSNewsFetcher(client, nil)
	src := Source{ID: "feed", Type: TypeRSSNews, Config: map[string]any{"feed_url": "https://news.example/rss"}}
	if _, err := f.Fetch(context.Background(), src); err == nil {
		t.Fatalf("expected parse error")
	}
}
