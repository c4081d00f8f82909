package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/brandkit"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "brandkit",
	Short: "brandkit - asset library and document settings for the document generator",
	Long: `brandkit stores the logos, icons, signatures and product images used on
generated documents, the global header, footer and hero banner settings, and
per-document-type logo preferences.

Configuration comes from a YAML file (--config) and BRANDKIT_* environment
variables, which may be kept in a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the brandkit version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "brandkit %s\n", version)
	},
}

// openApp loads the configuration and opens the record store without
// starting the HTTP server.
func openApp() (*brandkit.App, error) {
	cfg, err := brandkit.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	app := brandkit.New(cfg)
	if err := app.Open(); err != nil {
		return nil, err
	}
	return app, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
