package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eringen/brandkit"
	"github.com/eringen/brandkit/domain"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter brandkit.yaml and .env.example",
	Long: `Write a config file holding every default, and a .env.example listing the
secrets that should stay out of it.

Examples:
  brandkit init
  brandkit init deploy/ --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
}

const envExample = `# Secrets for brandkit. Copy to .env and fill in.
BRANDKIT_ADMIN_PASSWORD=
BRANDKIT_SESSION_SECRET=

# Only for the s3 backend.
# AWS_ACCESS_KEY_ID=
# AWS_SECRET_ACCESS_KEY=
`

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	cfg := brandkit.DefaultConfig()
	cfg.HeroCandidates = domain.DefaultHeroCandidates
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	files := []struct {
		name string
		data []byte
		mode os.FileMode
	}{
		{"brandkit.yaml", data, 0o644},
		{".env.example", []byte(envExample), 0o600},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.WriteFile(path, f.data, f.mode); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  created %s\n", path)
	}

	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "Set BRANDKIT_ADMIN_PASSWORD and BRANDKIT_SESSION_SECRET in .env, then run 'brandkit serve'.")
	return nil
}
