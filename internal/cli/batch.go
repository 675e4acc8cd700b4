package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Download every URL listed in a file, one after another",
	Long: `Download every URL listed in a file, one per line.

Empty lines and lines starting with # are skipped. URLs are processed
sequentially and a summary of failures is printed at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		urls, err := readBatchFile(args[0])
		if err != nil {
			return err
		}
		return runBatch(cmd, urls)
	},
}

func init() {
	batchCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory to save videos in (default from config)")
	batchCmd.Flags().StringVarP(&quality, "quality", "q", "", "preferred quality: sd or hd (default from config)")
	rootCmd.AddCommand(batchCmd)
}

// readBatchFile returns the URLs listed in filename
func readBatchFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs found in file")
	}
	return urls, nil
}

// runBatch downloads each URL in turn
func runBatch(cmd *cobra.Command, urls []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a := newApp(cmd)
	fmt.Printf("Found %d URL(s) to download\n\n", len(urls))

	var succeeded int
	var failedURLs []string

	for i, url := range urls {
		if ctx.Err() != nil {
			break
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(urls), truncateURL(url, 60))

		if err := a.process(ctx, url, nil); err != nil {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
			failedURLs = append(failedURLs, url)
		} else {
			succeeded++
		}
		fmt.Println()
	}

	// Print summary
	fmt.Println("----------------------------------------")
	fmt.Printf("Completed: %d/%d", succeeded, len(urls))
	if len(failedURLs) > 0 {
		fmt.Printf(", Failed: %d", len(failedURLs))
	}
	fmt.Println()

	// List failed URLs if any
	if len(failedURLs) > 0 {
		fmt.Println("\nFailed URLs:")
		for _, url := range failedURLs {
			fmt.Printf("  - %s\n", url)
		}
	}

	return nil
}

// truncateURL shortens a URL for display
func truncateURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}
