package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockform/pkg/config"
	"github.com/goliatone/go-blockform/pkg/form"
	"github.com/goliatone/go-blockform/pkg/tui"
)

// ResolveOptions holds the flags of the resolve and edit commands.
type ResolveOptions struct {
	Block    string
	Values   string
	Defaults []string
}

type resolvedField struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Value  any    `json:"value" yaml:"value"`
	State  string `json:"state" yaml:"state"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// newResolveCommand creates the resolve command.
func newResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the effective value of every field of a block",
		Long: `Resolve layers the scope's values file over the inherited defaults.
Defaults files are given from the outermost scope to the nearest one; the
block's built-in defaults always form the outermost layer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, rootOpts, opts)
		},
	}
	bindScopeFlags(cmd, opts)
	return cmd
}

func bindScopeFlags(cmd *cobra.Command, opts *ResolveOptions) {
	cmd.Flags().StringVarP(&opts.Block, "block", "b", "", "block ID")
	cmd.Flags().StringVar(&opts.Values, "values", "", "values file of the current scope")
	cmd.Flags().StringArrayVarP(&opts.Defaults, "defaults", "d", nil, "defaults file of an enclosing scope (repeatable, outermost first)")
}

func runResolve(cmd *cobra.Command, rootOpts *RootOptions, opts *ResolveOptions) error {
	s, err := rootOpts.openSession(cmd.Context(), opts.Block, opts.Defaults)
	if err != nil {
		return err
	}
	values := map[string]any{}
	if opts.Values != "" {
		if values, err = config.ReadValues(opts.Values); err != nil {
			return err
		}
	}

	f, err := form.New(s.block, values, s.inherited(), form.WithLogger(rootOpts.logger))
	if err != nil {
		return err
	}
	defer f.Close()

	effective := f.Effective()
	fields := make([]resolvedField, 0, len(s.block.Fields))
	for _, field := range s.block.Fields {
		ef := effective[field.Name]
		out := resolvedField{
			Name:  field.Name,
			Type:  string(field.Type),
			Value: ef.Value,
		}
		switch {
		case ef.IsDefault:
			out.State = "inherited"
			out.Source = s.sourceOf(field.Name)
		case ef.Override:
			out.State = "overridden"
			out.Source = opts.Values
		default:
			out.State = "unset"
		}
		fields = append(fields, out)
	}

	if rootOpts.Output != "table" {
		return writeStructured(cmd.OutOrStdout(), rootOpts.Output, fields)
	}
	rows := make([][]string, 0, len(fields))
	for _, field := range fields {
		source := field.Source
		if source == "" {
			source = "-"
		}
		rows = append(rows, []string{field.Name, field.Type, tui.FormatValue(field.Value), field.State, source})
	}
	return writeTable(cmd.OutOrStdout(), []string{"FIELD", "TYPE", "VALUE", "STATE", "SOURCE"}, rows)
}
