package sources

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

const ytSearchPayload = `{
  "items": [
    {
      "id": {"videoId": "vid1"},
      "snippet": {
        "title": "Starship Flight Test Replay",
        "description": "Full launch and landing burn coverage.",
        "channelTitle": "SpaceX",
        "publishedAt": "2026-08-29T14:00:00Z",
        "thumbnails": {
          "default": {"url": "https://i.ytimg.example/vid1/default.jpg"},
          "high": {"url": "https://i.ytimg.example/vid1/high.jpg"}
        }
      }
    },
    {
      "id": {"videoId": "vid2"},
      "snippet": {
        "title": "Cooking pasta at home",
        "description": "A weeknight recipe.",
        "channelTitle": "Kitchen Things",
        "publishedAt": "2026-08-29T10:00:00Z",
        "thumbnails": {}
      }
    },
    {
      "id": {"videoId": "vid1"},
      "snippet": {
        "title": "Starship Flight Test Replay",
        "description": "Duplicate search hit.",
        "channelTitle": "SpaceX",
        "publishedAt": "2026-08-29T14:00:00Z",
        "thumbnails": {}
      }
    }
  ]
}`

const ytStatsPayload = `{
  "items": [
    {"id": "vid1", "statistics": {"viewCount": "123456"}}
  ]
}`

func TestYouTubeFetchNormalizesFiltersAndDedupes(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		youtubeSearchURL: {status: 200, body: []byte(ytSearchPayload)},
		youtubeVideosURL: {status: 200, body: []byte(ytStatsPayload)},
	}}

	f := NewYouTubeFetcher(client, "test-key", NewFilter(nil, nil))
	src := Source{ID: "yt-main", Name: "Launch Videos", Type: TypeYouTube,
		Config: map[string]any{"search_terms": []any{"starship"}}}

	items, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// vid2 fails the relevance gate and the repeated vid1 hit collapses.
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.ExternalID != "vid1" || item.Kind != domain.KindVideo {
		t.Fatalf("unexpected identity: %+v", item)
	}
	if item.URL != "https://www.youtube.com/watch?v=vid1" {
		t.Fatalf("unexpected watch url: %s", item.URL)
	}
	if item.Thumbnail != "https://i.ytimg.example/vid1/high.jpg" {
		t.Fatalf("expected high-res thumbnail preferred, got %s", item.Thumbnail)
	}
	if item.Author != "SpaceX" {
		t.Fatalf("unexpected author: %s", item.Author)
	}
	if item.Engagement != 123456 {
		t.Fatalf("expected view count attached, got %d", item.Engagement)
	}
	if item.Provenance.Provider != "yt-main" {
		t.Fatalf("unexpected provenance: %+v", item.Provenance)
	}
}

func TestYouTubeFetchSurvivesStatisticsFailure(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		youtubeSearchURL: {status: 200, body: []byte(ytSearchPayload)},
		youtubeVideosURL: {status: 500, body: []byte("quota exceeded")},
	}}

	f := NewYouTubeFetcher(client, "test-key", NewFilter(nil, nil))
	items, err := f.Fetch(context.Background(), Source{ID: "yt-main", Type: TypeYouTube})
	if err != nil {
		t.Fatalf("Fetch must tolerate a stats failure: %v", err)
	}
	if len(items) == 0 {
		t.Fatalf("expected items without engagement data")
	}
	if items[0].Engagement != 0 {
		t.Fatalf("expected zero engagement when stats are unavailable, got %d", items[0].Engagement)
	}
}

func TestYouTubeFetchRequiresAPIKey(t *testing.T) {
	f := NewYouTubeFetcher(&fakeClient{}, "", NewFilter(nil, nil))
	if _, err := f.Fetch(context.Background(), Source{ID: "yt-main", Type: TypeYouTube}); err == nil {
		t.Fatalf("expected missing api key error")
	}
}

func TestYouTubeFetchRejectsForeignSourceType(t *testing.T) {
	f := NewYouTubeFetcher(&fakeClient{}, "key", nil)
	if _, err := f.Fetch(context.Background(), Source{ID: "feed", Type: TypeRSSNews}); err == nil {
		t.Fatalf("expected incompatible source type error")
	}
}

func TestNormalizeVideoFallsBackToPlaceholderThumbnail(t *testing.T) {
	var raw ytSearchItem
	raw.ID.VideoID = "v9"
	raw.Snippet.Title = "Orbital debris tracking"

	item := normalizeVideo(raw, "yt-main", time.Now())
	if item.Thumbnail != defaultThumbnailURL {
		t.Fatalf("expected placeholder thumbnail, got %s", item.Thumbnail)
	}
	if item.PublishedAt.IsZero() {
		t.Fatalf("expected publish time defaulted to fetch time")
	}
}

func TestYouTubeSearchUsesConfiguredQueries(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		youtubeSearchURL: {status: 200, body: []byte(`{"items": []}`)},
	}}

	f := NewYouTubeFetcher(client, "key", nil)
	src := Source{ID: "yt-main", Type: TypeYouTube,
		Config: map[string]any{"search_terms": []any{"artemis launch", "vulcan centaur"}}}

	if _, err := f.Fetch(context.Background(), src); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(client.requests) != 2 {
		t.Fatalf("expected one search request per query, got %d", len(client.requests))
	}
	if !strings.Contains(client.requests[0], "artemis+launch") {
		t.Fatalf("expected first query in request url: %s", client.requests[0])
	}
}
