package enrich

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/logger"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/httpclient"
	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/sources"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	requestDelay     = 300 * time.Millisecond
)

// Enricher backfills missing descriptions and thumbnails from a page's
// OG tags. It runs only on the preview path, where candidates face an
// operator and blank metadata matters; committed runs store whatever the
// provider supplied.
type Enricher struct {
	client httpclient.Client
	log    logger.Logger
}

// New constructs an enricher with the provided HTTP client (or default).
func New(client httpclient.Client, log logger.Logger) *Enricher {
	if client == nil {
		client = sources.DefaultHTTPClient()
	}
	return &Enricher{client: client, log: logger.Ensure(log)}
}

// Enrich fills gaps in each candidate, fetching pages with throttling.
// Only items missing a description or carrying no real thumbnail are
// fetched. Scrape failures leave the item unchanged.
func (e *Enricher) Enrich(ctx context.Context, items []domain.Content) []domain.Content {
	out := append([]domain.Content(nil), items...)

	fetched := 0
	for i, item := range out {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		if !needsEnrichment(item) {
			continue
		}
		if fetched > 0 {
			timer := time.NewTimer(requestDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
		fetched++

		meta, err := e.fetchMeta(ctx, item.URL)
		if err != nil {
			e.log.WarnObj("metadata scrape failed", "metadata_error", map[string]any{
				"url":   item.URL,
				"error": err.Error(),
			})
			continue
		}

		if out[i].Description == "" && meta.Description != "" {
			out[i].Description = meta.Description
		}
		if meta.ImageURL != "" {
			out[i].Thumbnail = meta.ImageURL
		}
	}

	return out
}

func needsEnrichment(c domain.Content) bool {
	if c.URL == "" {
		return false
	}
	return c.Description == "" || c.Thumbnail == "" || strings.Contains(c.Thumbnail, "placeholder")
}

func (e *Enricher) fetchMeta(ctx context.Context, url string) (pageMeta, error) {
	resp, err := e.client.Get(ctx, url, nil)
	if err != nil {
		return pageMeta{}, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return pageMeta{}, fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return parseMeta(body)
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm := pageMeta{}
	pm.Description = firstNonEmpty(
		extract(`meta[property="og:description"]`),
		extract(`meta[name="description"]`),
	)
	pm.ImageURL = extract(`meta[property="og:image"]`)

	return pm, nil
}

type pageMeta struct {
	Description string
	ImageURL    string
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
