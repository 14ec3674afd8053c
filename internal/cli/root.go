// Package cli implements the blockform command line: listing catalog blocks,
// resolving a scope against its inherited defaults, and editing a scope file
// interactively.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/config"
	"github.com/goliatone/go-blockform/pkg/tui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	ConfigPath string
	CatalogDir string
	OpenAPI    string
	Component  string
	Output     string // "table" | "yaml" | "json"

	cfg    config.Config
	logger *zap.Logger
	driver tui.PromptDriver
}

// ValidOutputs defines the allowed output formats.
var ValidOutputs = []string{"table", "yaml", "json"}

// NewRootCommand creates the root command of the blockform CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blockform",
		Short: "Inspect and edit building-block configuration",
		Long: `blockform works with building-block configuration: typed field sets whose
values are inherited from outer scopes unless overridden in the current one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidOutput(opts.Output) {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, ValidOutputs)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if opts.logger == nil {
				opts.logger, err = newLogger(opts.Verbose)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "blockform.yaml", "configuration file")
	cmd.PersistentFlags().StringVar(&opts.CatalogDir, "catalog", "", "directory with extra block definitions")
	cmd.PersistentFlags().StringVar(&opts.OpenAPI, "openapi", "", "OpenAPI document to derive the block from")
	cmd.PersistentFlags().StringVar(&opts.Component, "component", "", "component schema name in the OpenAPI document (defaults to the block ID)")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "table", "output format (table|yaml|json)")

	cmd.AddCommand(newBlocksCommand(opts))
	cmd.AddCommand(newResolveCommand(opts))
	cmd.AddCommand(newEditCommand(opts))

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("cli: build logger: %w", err)
	}
	return logger, nil
}

func isValidOutput(output string) bool {
	for _, candidate := range ValidOutputs {
		if candidate == output {
			return true
		}
	}
	return false
}
