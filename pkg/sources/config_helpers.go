package sources

import "strings"

// ConfigString returns the trimmed string value for key from the source config or a fallback.
func ConfigString(src Source, key, fallback string) string {
	if src.Config != nil {
		if raw, ok := src.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

// ConfigInt returns the int value for key from the source config or a fallback.
// YAML decodes numbers as int, JSON as float64; both are accepted.
func ConfigInt(src Source, key string, fallback int) int {
	if src.Config == nil {
		return fallback
	}
	switch v := src.Config[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}

// ConfigStrings returns the string-list value for key from the source config.
func ConfigStrings(src Source, key string) []string {
	if src.Config == nil {
		return nil
	}
	raw, ok := src.Config[key]
	if !ok {
		return nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(list))
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

const (
	ConfigSearchTermsKey = "search_terms"
	ConfigMaxResultsKey  = "max_results"
	ConfigFeedURLKey     = "feed_url"
	ConfigWindowHoursKey = "window_hours"
	ConfigUserAgentKey   = "user_agent"
)

// Headers builds the common request headers from a source config (skips empty values).
func Headers(src Source) map[string]string {
	headers := make(map[string]string, 1)
	if v := ConfigString(src, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	return headers
}
