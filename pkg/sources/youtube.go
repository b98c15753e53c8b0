package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

const (
	youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"
	youtubeVideosURL = "https://www.googleapis.com/youtube/v3/videos"

	youtubeDefaultMaxResults = 20
	youtubeStatsBatchSize    = 50
)

var youtubeDefaultQueries = []string{"rocket launch", "spacex starship", "orbital mission"}

// youtubeFetcher implements Fetcher for the YouTube search API.
type youtubeFetcher struct {
	client HTTPClient
	apiKey string
	filter *Filter
	now    func() time.Time
}

// NewYouTubeFetcher builds the video adapter. The API key comes from the
// environment, not from the roster file, so roster files stay shareable.
func NewYouTubeFetcher(client HTTPClient, apiKey string, filter *Filter) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &youtubeFetcher{
		client: client,
		apiKey: apiKey,
		filter: filter,
		now:    time.Now,
	}
}

func (f *youtubeFetcher) Type() string      { return TypeYouTube }
func (f *youtubeFetcher) Kind() domain.Kind { return domain.KindVideo }

func (f *youtubeFetcher) Fetch(ctx context.Context, src Source) ([]domain.Content, error) {
	if !strings.EqualFold(src.Type, TypeYouTube) {
		return nil, fmt.Errorf("youtube fetcher received incompatible source type %q", src.Type)
	}
	if f.apiKey == "" {
		return nil, fmt.Errorf("source %q requires a youtube api key (set YOUTUBE_API_KEY)", src.ID)
	}

	queries := ConfigStrings(src, ConfigSearchTermsKey)
	if len(queries) == 0 {
		queries = youtubeDefaultQueries
	}
	maxResults := ConfigInt(src, ConfigMaxResultsKey, youtubeDefaultMaxResults)
	windowHours := ConfigInt(src, ConfigWindowHoursKey, 48)

	seen := make(map[string]bool)
	var items []domain.Content
	for _, query := range queries {
		raw, err := f.search(ctx, src, query, maxResults, windowHours)
		if err != nil {
			return nil, err
		}
		for _, entry := range raw {
			item := normalizeVideo(entry, src.ID, f.now())
			if item.ExternalID == "" || seen[item.ExternalID] {
				continue
			}
			if f.filter != nil && !f.filter.Match(item.Title+" "+item.Description) {
				continue
			}
			seen[item.ExternalID] = true
			items = append(items, item)
		}
	}

	if len(items) > 0 {
		if err := f.attachStatistics(ctx, items); err != nil {
			// Stats only feed the engagement bonus; the run proceeds without them.
			return items, nil
		}
	}
	return items, nil
}

func (f *youtubeFetcher) search(ctx context.Context, src Source, query string, maxResults, windowHours int) ([]ytSearchItem, error) {
	publishedAfter := f.now().Add(-time.Duration(windowHours) * time.Hour).UTC().Format(time.RFC3339)

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "viewCount")
	params.Set("publishedAfter", publishedAfter)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("key", f.apiKey)

	body, err := fetchBody(ctx, f.client, youtubeSearchURL+"?"+params.Encode(), src.ID, Headers(src))
	if err != nil {
		return nil, err
	}

	var result ytSearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode youtube search for %s: %w", src.ID, err)
	}
	return result.Items, nil
}

// attachStatistics batch-fetches view counts for the found videos.
func (f *youtubeFetcher) attachStatistics(ctx context.Context, items []domain.Content) error {
	idx := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for i, item := range items {
		ids = append(ids, item.ExternalID)
		idx[item.ExternalID] = i
	}

	for start := 0; start < len(ids); start += youtubeStatsBatchSize {
		end := min(start+youtubeStatsBatchSize, len(ids))

		params := url.Values{}
		params.Set("part", "statistics")
		params.Set("id", strings.Join(ids[start:end], ","))
		params.Set("key", f.apiKey)

		body, err := fetchBody(ctx, f.client, youtubeVideosURL+"?"+params.Encode(), "youtube statistics", nil)
		if err != nil {
			return err
		}

		var result ytVideoResult
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("decode youtube statistics: %w", err)
		}
		for _, video := range result.Items {
			if i, ok := idx[video.ID]; ok {
				items[i].Engagement = video.Statistics.ViewCount
			}
		}
	}
	return nil
}

// normalizeVideo is the pure raw-to-normalized mapping for one search hit.
func normalizeVideo(raw ytSearchItem, sourceID string, fetchedAt time.Time) domain.Content {
	published := raw.Snippet.PublishedAt
	if published.IsZero() {
		published = fetchedAt.UTC()
	}

	thumbnail := raw.Snippet.Thumbnails.High.URL
	if thumbnail == "" {
		thumbnail = raw.Snippet.Thumbnails.Default.URL
	}
	if thumbnail == "" {
		thumbnail = defaultThumbnailURL
	}

	return domain.Content{
		ExternalID:  raw.ID.VideoID,
		Kind:        domain.KindVideo,
		Title:       raw.Snippet.Title,
		Description: truncate(raw.Snippet.Description, maxDescriptionLen),
		URL:         "https://www.youtube.com/watch?v=" + raw.ID.VideoID,
		Author:      raw.Snippet.ChannelTitle,
		Thumbnail:   thumbnail,
		PublishedAt: published,
		Provenance: domain.Provenance{
			Provider:  sourceID,
			FetchedAt: fetchedAt.UTC(),
		},
	}
}

type ytSearchResult struct {
	Items []ytSearchItem `json:"items"`
}

type ytSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet ytSnippet `json:"snippet"`
}

type ytSnippet struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelTitle string    `json:"channelTitle"`
	PublishedAt  time.Time `json:"publishedAt"`
	Thumbnails   struct {
		Default struct {
			URL string `json:"url"`
		} `json:"default"`
		High struct {
			URL string `json:"url"`
		} `json:"high"`
	} `json:"thumbnails"`
}

type ytVideoResult struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount int `json:"viewCount,string"`
		} `json:"statistics"`
	} `json:"items"`
}
