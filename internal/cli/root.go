package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/guiyumin/fbdl/internal/config"
	"github.com/guiyumin/fbdl/internal/extractor"
	"github.com/guiyumin/fbdl/internal/version"
	"github.com/spf13/cobra"
)

var (
	outputDir  string
	quality    string
	info       bool
	jsonOut    bool
	attempts   int
	useBrowser bool
	visible    bool
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:     "fbdl [url]",
	Short:   "Download Facebook videos in SD or HD",
	Long:    "Extract direct video links from a Facebook video page and save the chosen quality to disk.\nRun without a URL for an interactive prompt.",
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			config.SetPath(configPath)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a := newApp(cmd)
		if len(args) == 1 {
			return a.process(ctx, args[0], nil)
		}
		return a.interactive(ctx, os.Stdin)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory to save videos in (default from config)")
	rootCmd.Flags().StringVarP(&quality, "quality", "q", "", "preferred quality: sd or hd (default from config)")
	rootCmd.Flags().BoolVar(&info, "info", false, "show video info without downloading")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "print the extraction result as JSON and exit")
	rootCmd.PersistentFlags().IntVar(&attempts, "attempts", 0, "maximum page load attempts (default from config)")
	rootCmd.PersistentFlags().BoolVar(&useBrowser, "browser", false, "load pages with headless Chromium instead of plain HTTP")
	rootCmd.PersistentFlags().BoolVar(&visible, "visible", false, "show the browser window (with --browser)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// interactive prompts for URLs until "exit" or EOF. Errors are printed and
// the loop continues with the next prompt.
func (a *app) interactive(ctx context.Context, in io.Reader) error {
	fmt.Print("=== Facebook Downloader ===\n")
	fmt.Printf("Supported: %s\n", supportedPlatforms(a.registry))
	fmt.Print("Type 'exit' to quit\n\n")

	reader := bufio.NewReader(in)
	prompt := color.New(color.FgCyan)

	for {
		if ctx.Err() != nil {
			return nil
		}

		prompt.Print("Enter video URL: ")
		line, readErr := reader.ReadString('\n')
		input := strings.TrimSpace(line)

		switch {
		case input == "" && readErr != nil:
			fmt.Println()
			return nil
		case input == "":
			continue
		case strings.EqualFold(input, "exit"):
			return nil
		}

		if err := a.process(ctx, input, reader); err != nil {
			color.Red("Error: %v", err)
		}

		fmt.Printf("\n%s\n\n", strings.Repeat("=", 60))

		if readErr != nil {
			return nil
		}
	}
}

// supportedPlatforms lists the registered extractor names for the banner
func supportedPlatforms(reg *extractor.Registry) string {
	var names []string
	for _, e := range reg.List() {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
