package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/guiyumin/fbdl/internal/extractor"
)

// describeEvent turns a progress event into a status line.
// Events with nothing worth showing return "".
func describeEvent(ev extractor.Event) string {
	switch ev.Kind {
	case extractor.EventAttemptStarted:
		return fmt.Sprintf("Attempt %d/%d...", ev.Attempt, ev.MaxAttempts)
	case extractor.EventAttemptFailed:
		return fmt.Sprintf("Attempt %d failed: %v", ev.Attempt, ev.Err)
	case extractor.EventWaiting:
		return fmt.Sprintf("Retrying in %s...", ev.Delay)
	case extractor.EventExhausted:
		return fmt.Sprintf("Gave up after %d attempts", ev.Attempt)
	}
	return ""
}

func printEvent(ev extractor.Event) {
	line := describeEvent(ev)
	if line == "" {
		return
	}

	switch ev.Kind {
	case extractor.EventAttemptFailed:
		color.Yellow("%s", line)
	case extractor.EventExhausted:
		color.Red("%s", line)
	default:
		fmt.Println(line)
	}
}

func printResult(result *extractor.DownloadResult) {
	white := color.New(color.FgWhite)
	white.Printf("Title: %s\n", result.Title)
	white.Printf("Page: %s\n", result.PageName)
	white.Printf("Thumbnail: %s\n", result.Thumbnail)
	white.Printf("Video ID: %s\n", result.VideoID)

	color.Cyan("\nDownload links:")
	for _, d := range result.Downloads {
		switch d.Quality {
		case extractor.QualitySD:
			color.Yellow("  Low quality (SD): %s", forcedDownloadURL(d.URL))
		case extractor.QualityHD:
			color.Green("  High quality (HD): %s", forcedDownloadURL(d.URL))
		}
	}
}

// forcedDownloadURL appends dl=1 so a browser saves the file instead of playing it.
// The signed query is left untouched.
func forcedDownloadURL(u string) string {
	if strings.Contains(u, "?") {
		return u + "&dl=1"
	}
	return u + "?dl=1"
}
