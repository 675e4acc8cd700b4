package facebook

import (
	"regexp"

	"github.com/guiyumin/fbdl/internal/extractor"
)

// linkPatterns are checked in output order: SD always precedes HD
var linkPatterns = []struct {
	quality extractor.Quality
	re      *regexp.Regexp
}{
	{extractor.QualitySD, regexp.MustCompile(`browser_native_sd_url":"([^"]+)"`)},
	{extractor.QualityHD, regexp.MustCompile(`browser_native_hd_url":"([^"]+)"`)},
}

// ExtractLinks finds the direct media URLs embedded in the page's inline JSON.
// It returns an empty slice when the page carries none.
func ExtractLinks(html string) []extractor.DownloadOption {
	options := []extractor.DownloadOption{}
	for _, p := range linkPatterns {
		m := p.re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		link := unescapeOrRaw(m[1])
		if link == "" {
			continue
		}
		options = append(options, extractor.DownloadOption{
			Quality: p.quality,
			Format:  extractor.FormatMP4,
			URL:     link,
		})
	}
	return options
}
