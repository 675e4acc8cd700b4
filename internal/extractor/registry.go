package extractor

import (
	"fmt"
	"net/url"
	"strings"
)

// UnsupportedPlatformError is returned for URLs no registered extractor handles
type UnsupportedPlatformError struct {
	URL string
}

func (e *UnsupportedPlatformError) Error() string {
	return "unsupported platform, please provide a Facebook URL"
}

// Registry maps hostnames to their extractors
type Registry struct {
	byHost map[string]Extractor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byHost: map[string]Extractor{}}
}

// Register adds an extractor for the given hostnames
func (r *Registry) Register(e Extractor, hosts ...string) {
	for _, host := range hosts {
		r.byHost[strings.ToLower(host)] = e
	}
}

// Match finds the extractor for a URL using O(1) hostname lookup.
// Subdomains (www., m., web.) resolve to the registered parent domain.
func (r *Registry) Match(rawURL string) (Extractor, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL: %q is not an absolute http(s) URL", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	for host != "" {
		if e, ok := r.byHost[host]; ok && e.Match(u) {
			return e, nil
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}

	return nil, &UnsupportedPlatformError{URL: rawURL}
}

// List returns all unique registered extractors
func (r *Registry) List() []Extractor {
	seen := make(map[string]bool)
	var result []Extractor
	for _, e := range r.byHost {
		if !seen[e.Name()] {
			seen[e.Name()] = true
			result = append(result, e)
		}
	}
	return result
}
