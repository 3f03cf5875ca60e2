package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hperssn/genesis/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// defaultConfigFiles are tried in order when --config is not given.
var defaultConfigFiles = []string{
	"genesis.yaml",
	"genesis.yml",
	"genesis.toml",
	filepath.Join(".genesis", "config.yaml"),
}

// NewRootCommand creates and returns the root cobra command for genesis
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Rapid Prototype Genesis: from vision to lovable prototype in one day",
		Long: `Genesis walks you through forty questions about the product you want to
build and turns the answers into a product requirements document.

Run "genesis serve" for the web app or "genesis ask" to answer in the terminal.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (YAML or TOML, default: genesis.yaml)")

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewAskCommand())
	cmd.AddCommand(NewRenderCommand())

	return cmd
}

// loadConfig reads the config file named by --config, or the first default
// file that exists.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		for _, candidate := range defaultConfigFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	return config.LoadConfig(path)
}

// changedString returns the flag's value only when it was set on the
// command line.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// addStorageFlags registers the flags shared by commands that persist
// documents.
func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String("storage", "", "Document storage driver: file, sqlite or postgres")
	cmd.Flags().String("dsn", "", "Database connection string for sqlite or postgres")
	cmd.Flags().String("documents-dir", "", "Directory for stored documents (default: generated_prds)")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
}

func mergeStorageFlags(cmd *cobra.Command, cfg *config.Config, listen, serverURL *string) {
	cfg.MergeWithFlags(
		listen,
		changedString(cmd, "storage"),
		changedString(cmd, "dsn"),
		changedString(cmd, "documents-dir"),
		changedString(cmd, "log-level"),
		serverURL,
	)
}
