package facebook

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/guiyumin/fbdl/internal/extractor"
)

// UnescapeJSONString decodes the payload of a JSON string literal, as found
// between the quotes of an inline script (e.g. `https:\/\/x&y`).
func UnescapeJSONString(s string) (string, error) {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return "", fmt.Errorf("failed to unescape JSON string: %w", err)
	}
	return out, nil
}

// unescapeOrRaw returns the decoded string, or s itself when it is not a valid payload
func unescapeOrRaw(s string) string {
	out, err := UnescapeJSONString(s)
	if err != nil {
		return s
	}
	return out
}

// DecodeEntities decodes HTML character references such as &amp; and &#039;
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// CleanTitle strips the view-count prefix Facebook puts in front of og:title.
//
// "1.2M views_The real title_extra" becomes "The real title". Titles without an
// underscore are only trimmed. The heuristic also fires on titles that contain
// underscores of their own, and CleanTitle(CleanTitle(x)) may differ from
// CleanTitle(x).
func CleanTitle(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return extractor.DefaultTitle
	}

	var parts []string
	for _, p := range strings.Split(raw, "_") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) >= 2 {
		if second := strings.TrimSpace(parts[1]); second != "" {
			return second
		}
	}
	return trimmed
}
