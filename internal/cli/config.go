package cli

import (
	"fmt"
	"os"

	"github.com/guiyumin/fbdl/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage fbdl configuration",
	Long:  "View and create the fbdl configuration file",
}

// fbdl config show - show current config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()

		fmt.Println("Current configuration:")
		fmt.Printf("  OutputDir:   %s\n", cfg.OutputDir)
		fmt.Printf("  Quality:     %s\n", cfg.Quality)
		fmt.Printf("  MaxAttempts: %d\n", cfg.MaxAttempts)
		fmt.Printf("  RetryDelay:  %s\n", cfg.RetryDelay)
		fmt.Printf("  Timeout:     %s\n", cfg.Timeout)
		fmt.Printf("  Browser:     %t\n", cfg.Browser)
		fmt.Printf("  ServeAddr:   %s\n", cfg.ServeAddr)
		fmt.Printf("  Config:      %s\n", config.SavePath())

		if len(cfg.UserAgents) > 0 {
			fmt.Println("\nUser agents:")
			for _, ua := range cfg.UserAgents {
				fmt.Printf("  %s\n", ua)
			}
		}
	},
}

// fbdl config path - show config file path
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.SavePath())
	},
}

var configInitForce bool

// fbdl config init - write the default config
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Exists() && !configInitForce {
			fmt.Fprintf(os.Stderr, "Config already exists at %s\n", config.SavePath())
			fmt.Fprintln(os.Stderr, "Use --force to overwrite it.")
			return nil
		}

		if err := config.Save(config.Default()); err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", config.SavePath())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
