package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/pkg/config"
	"github.com/goliatone/go-blockform/pkg/form"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/tui"
)

// newEditCommand creates the edit command.
func newEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the values file of a scope interactively",
		Long: `Edit prompts for the fields of a block and saves the scope's overrides
to the values file after each debounced batch of edits. Values equal to the
inherited default are not written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, rootOpts, opts)
		},
	}
	bindScopeFlags(cmd, opts)
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

func runEdit(cmd *cobra.Command, rootOpts *RootOptions, opts *ResolveOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := rootOpts.openSession(ctx, opts.Block, opts.Defaults)
	if err != nil {
		return err
	}
	values, err := config.ReadValues(opts.Values)
	if err != nil {
		return err
	}

	var f *form.Form
	persist := form.MutatorFunc(func(_ context.Context, blockID string, change model.Change) error {
		rootOpts.logger.Debug("cli: saving overrides",
			zap.String("block", blockID),
			zap.Strings("fields", change.Names()),
		)
		return config.WriteValues(opts.Values, f.Overrides())
	})

	f, err = form.New(s.block, values, s.inherited(),
		form.WithConfig(rootOpts.cfg),
		form.WithMutator(persist),
		form.WithLogger(rootOpts.logger),
		form.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer f.Close()

	driver := rootOpts.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(cmd.OutOrStdout())
	}
	editor := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithLogger(rootOpts.logger),
		tui.WithStatusMessages(true),
	)

	if err := editor.Run(ctx, f); err != nil {
		if tui.IsAborted(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), "aborted, unsaved edits discarded")
			return nil
		}
		return err
	}

	if snap := f.Status(); snap.Err != nil {
		return fmt.Errorf("cli: save %s: %w", opts.Values, snap.Err)
	}
	return nil
}

