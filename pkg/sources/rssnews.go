package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

// rssNewsFetcher implements Fetcher for RSS/Atom news feeds.
type rssNewsFetcher struct {
	client HTTPClient
	parser *gofeed.Parser
	filter *Filter
	now    func() time.Time
}

// NewRSSNewsFetcher builds the news adapter. Each roster entry maps to a
// single feed (config key feed_url).
func NewRSSNewsFetcher(client HTTPClient, filter *Filter) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &rssNewsFetcher{
		client: client,
		parser: gofeed.NewParser(),
		filter: filter,
		now:    time.Now,
	}
}

func (f *rssNewsFetcher) Type() string      { return TypeRSSNews }
func (f *rssNewsFetcher) Kind() domain.Kind { return domain.KindArticle }

func (f *rssNewsFetcher) Fetch(ctx context.Context, src Source) ([]domain.Content, error) {
	if !strings.EqualFold(src.Type, TypeRSSNews) {
		return nil, fmt.Errorf("rss news fetcher received incompatible source type %q", src.Type)
	}
	feedURL := ConfigString(src, ConfigFeedURLKey, "")
	if feedURL == "" {
		return nil, fmt.Errorf("source %q feed_url is empty", src.ID)
	}

	body, err := fetchBody(ctx, f.client, feedURL, src.ID, Headers(src))
	if err != nil {
		return nil, err
	}

	parsed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed for %s: %w", src.ID, err)
	}

	windowHours := ConfigInt(src, ConfigWindowHoursKey, 48)
	maxResults := ConfigInt(src, ConfigMaxResultsKey, 50)
	cutoff := f.now().Add(-time.Duration(windowHours) * time.Hour)

	items := make([]domain.Content, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item := normalizeFeedEntry(entry, src.ID, f.now())
		if item.ExternalID == "" || item.URL == "" {
			continue
		}
		if item.PublishedAt.Before(cutoff) {
			continue
		}
		if f.filter != nil && !f.filter.Match(item.Title+" "+item.Description) {
			continue
		}
		items = append(items, item)
		if len(items) >= maxResults {
			break
		}
	}

	return items, nil
}

// normalizeFeedEntry is the pure raw-to-normalized mapping for one feed entry.
func normalizeFeedEntry(entry *gofeed.Item, sourceID string, fetchedAt time.Time) domain.Content {
	published := fetchedAt.UTC()
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		published = entry.UpdatedParsed.UTC()
	}

	link := entry.Link
	if link == "" && len(entry.Links) > 0 {
		link = entry.Links[0]
	}

	externalID := strings.TrimSpace(entry.GUID)
	if externalID == "" {
		externalID = link
	}

	author := ""
	if entry.Author != nil {
		author = entry.Author.Name
	}

	thumbnail := defaultThumbnailURL
	if entry.Image != nil && entry.Image.URL != "" {
		thumbnail = entry.Image.URL
	}

	return domain.Content{
		ExternalID:  externalID,
		Kind:        domain.KindArticle,
		Title:       strings.TrimSpace(entry.Title),
		Description: truncate(strings.TrimSpace(entry.Description), maxDescriptionLen),
		URL:         link,
		Author:      author,
		Thumbnail:   thumbnail,
		PublishedAt: published,
		Provenance: domain.Provenance{
			Provider:  sourceID,
			FetchedAt: fetchedAt.UTC(),
		},
	}
}
