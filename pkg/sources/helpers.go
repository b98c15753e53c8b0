package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/orbitwire-hq/orbitwire-aggregator/pkg/httpclient"
)

const (
	// maxDescriptionLen caps normalized descriptions; provider blurbs can
	// run to several KB.
	maxDescriptionLen = 500

	// defaultThumbnailURL is the provider-neutral placeholder used when a
	// provider supplies no thumbnail, so downstream rendering never sees
	// an empty image slot.
	defaultThumbnailURL = "https://static.orbitwire.io/placeholder-thumb.png"
)

// truncate cuts s to at most maxLen bytes, backing up to a rune
// boundary so the result stays valid UTF-8.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// fetchBody performs a GET and enforces a 200 status, returning a body
// snippet in the error otherwise.
func fetchBody(ctx context.Context, client httpclient.Client, url, sourceID string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sourceID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", sourceID, resp.StatusCode(), responseSnippet(body))
	}

	return body, nil
}
