package facebook

import (
	"reflect"
	"testing"

	"github.com/guiyumin/fbdl/internal/extractor"
)

func TestExtractLinks(t *testing.T) {
	sd := extractor.DownloadOption{Quality: extractor.QualitySD, Format: "mp4", URL: "https://cdn.example/sd.mp4?a=1&b=2"}
	hd := extractor.DownloadOption{Quality: extractor.QualityHD, Format: "mp4", URL: "https://cdn.example/hd.mp4"}

	tests := []struct {
		name string
		html string
		want []extractor.DownloadOption
	}{
		{
			name: "both, HD first in page",
			html: `{"browser_native_hd_url":"https:\/\/cdn.example\/hd.mp4","browser_native_sd_url":"https:\/\/cdn.example\/sd.mp4?a=1&b=2"}`,
			want: []extractor.DownloadOption{sd, hd},
		},
		{
			name: "HD only",
			html: `"browser_native_hd_url":"https:\/\/cdn.example\/hd.mp4"`,
			want: []extractor.DownloadOption{hd},
		},
		{
			name: "first match wins",
			html: `"browser_native_hd_url":"https:\/\/cdn.example\/hd.mp4" "browser_native_hd_url":"https:\/\/other\/x.mp4"`,
			want: []extractor.DownloadOption{hd},
		},
		{
			name: "malformed escape keeps raw text",
			html: `"browser_native_sd_url":"https:\/\/cdn.example\/x\q.mp4"`,
			want: []extractor.DownloadOption{{Quality: extractor.QualitySD, Format: "mp4", URL: `https:\/\/cdn.example\/x\q.mp4`}},
		},
		{
			name: "key is case-sensitive",
			html: `"BROWSER_NATIVE_HD_URL":"https:\/\/cdn.example\/hd.mp4"`,
			want: []extractor.DownloadOption{},
		},
		{
			name: "no markers",
			html: `<html><body>Log in to continue</body></html>`,
			want: []extractor.DownloadOption{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLinks(tt.html)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractLinks() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
