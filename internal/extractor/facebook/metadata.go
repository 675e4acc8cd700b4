package facebook

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/guiyumin/fbdl/internal/extractor"
)

// Metadata holds the descriptive fields of a video page
type Metadata struct {
	VideoID   string
	Title     string
	PageName  string
	Thumbnail string
}

const (
	metaTitle  = "og:title"
	metaImage  = "og:image"
	metaAuthor = "author"
)

var (
	pageNameRe   = regexp.MustCompile(`"page_name":"((?:[^"\\]|\\.)*)"`)
	videoPathRe  = regexp.MustCompile(`/videos/(\d+)`)
	videoQueryRe = regexp.MustCompile(`[?&]v=(\d+)`)
	nonDigitRe   = regexp.MustCompile(`[^0-9]`)

	// Fallback scanner for tags the HTML parser does not expose as elements
	metaTagRe  = regexp.MustCompile(`(?is)<meta\b[^>]*>`)
	metaAttrRe = regexp.MustCompile(`(?is)([a-z][a-z0-9:_-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// ExtractMetadata reads title, page name and thumbnail from html and the
// video id from sourceURL. Missing fields get their placeholders.
func ExtractMetadata(html, sourceURL string) Metadata {
	tags := metaTags(html)

	md := Metadata{
		VideoID:   VideoID(sourceURL),
		Title:     extractor.DefaultTitle,
		PageName:  extractor.DefaultPageName,
		Thumbnail: extractor.DefaultThumbnail,
	}

	if title, ok := tags[metaTitle]; ok {
		md.Title = CleanTitle(title)
	}

	if author := strings.TrimSpace(tags[metaAuthor]); author != "" {
		md.PageName = author
	} else if m := pageNameRe.FindStringSubmatch(html); m != nil {
		if name := strings.TrimSpace(unescapeOrRaw(m[1])); name != "" {
			md.PageName = name
		}
	}

	if thumb := strings.TrimSpace(tags[metaImage]); thumb != "" {
		md.Thumbnail = thumb
	}

	return md
}

// VideoID derives the numeric id from a video URL: /videos/<id>, then v=<id>,
// then every digit in the URL. The result may be empty.
func VideoID(rawURL string) string {
	if m := videoPathRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	if m := videoQueryRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return nonDigitRe.ReplaceAllString(rawURL, "")
}

// metaTags maps lowercased name/property keys to their entity-decoded
// content. The first tag wins when a key repeats. Tags inside <noscript> are
// raw text to the parser, so keys it misses are filled from the raw scan.
func metaTags(html string) map[string]string {
	tags := map[string]string{}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		parsedMetaTags(doc, tags)
	}

	for key, content := range scanMetaTags(html) {
		if _, ok := tags[key]; !ok {
			tags[key] = content
		}
	}
	return tags
}

func parsedMetaTags(doc *goquery.Document, tags map[string]string) {
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		for _, attr := range []string{"property", "name"} {
			key, ok := s.Attr(attr)
			if !ok {
				continue
			}
			key = strings.ToLower(strings.TrimSpace(key))
			if _, seen := tags[key]; !seen && key != "" {
				tags[key] = content
			}
		}
	})
}

// scanMetaTags is the pattern-based equivalent of metaTags
func scanMetaTags(html string) map[string]string {
	tags := map[string]string{}
	for _, tag := range metaTagRe.FindAllString(html, -1) {
		attrs := map[string]string{}
		for _, m := range metaAttrRe.FindAllStringSubmatch(tag, -1) {
			name := strings.ToLower(m[1])
			if _, seen := attrs[name]; seen {
				continue
			}
			attrs[name] = m[2] + m[3]
		}

		content, ok := attrs["content"]
		if !ok {
			continue
		}
		for _, attr := range []string{"property", "name"} {
			key := strings.ToLower(strings.TrimSpace(attrs[attr]))
			if _, seen := tags[key]; !seen && key != "" {
				tags[key] = DecodeEntities(content)
			}
		}
	}
	return tags
}
