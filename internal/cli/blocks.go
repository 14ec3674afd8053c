package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/tui"
)

type blockSummary struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Fields      int    `json:"fields" yaml:"fields"`
	Defaults    int    `json:"defaults" yaml:"defaults"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type fieldSummary struct {
	Name     string   `json:"name" yaml:"name"`
	Type     string   `json:"type" yaml:"type"`
	Label    string   `json:"label" yaml:"label"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`
	Multiple bool     `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Default  any      `json:"default,omitempty" yaml:"default,omitempty"`
}

// newBlocksCommand creates the blocks command.
func newBlocksCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks [block-id]",
		Short: "List catalog blocks, or the fields of one block",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runBlockFields(cmd, opts, args[0])
			}
			return runBlocks(cmd, opts)
		},
	}
}

func runBlocks(cmd *cobra.Command, opts *RootOptions) error {
	cat, err := opts.loadCatalog()
	if err != nil {
		return err
	}

	var summaries []blockSummary
	for _, id := range cat.IDs() {
		entry, _ := cat.Entry(id)
		summaries = append(summaries, blockSummary{
			ID:          id,
			Label:       entry.Block.Label,
			Fields:      len(entry.Block.Fields),
			Defaults:    len(entry.Defaults),
			Description: entry.Block.Description,
		})
	}

	if opts.Output != "table" {
		return writeStructured(cmd.OutOrStdout(), opts.Output, summaries)
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{s.ID, s.Label, strconv.Itoa(s.Fields), strconv.Itoa(s.Defaults)})
	}
	return writeTable(cmd.OutOrStdout(), []string{"ID", "LABEL", "FIELDS", "DEFAULTS"}, rows)
}

func runBlockFields(cmd *cobra.Command, opts *RootOptions, blockID string) error {
	s, err := opts.openSession(cmd.Context(), blockID, nil)
	if err != nil {
		return err
	}
	builtin := s.layers[0]

	fields := make([]fieldSummary, 0, len(s.block.Fields))
	for _, field := range s.block.Fields {
		fields = append(fields, fieldSummary{
			Name:     field.Name,
			Type:     string(field.Type),
			Label:    field.DisplayLabel(),
			Options:  field.Options,
			Multiple: field.Multiple,
			Default:  builtin[field.Name],
		})
	}

	if opts.Output != "table" {
		return writeStructured(cmd.OutOrStdout(), opts.Output, fields)
	}
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.Name, typeColumn(f), f.Label, defaultColumn(f.Default)})
	}
	return writeTable(cmd.OutOrStdout(), []string{"FIELD", "TYPE", "LABEL", "DEFAULT"}, rows)
}

func typeColumn(f fieldSummary) string {
	if f.Type != string(model.FieldTypeEnum) {
		return f.Type
	}
	kind := "enum"
	if f.Multiple {
		kind = "enum[]"
	}
	return fmt.Sprintf("%s(%s)", kind, strings.Join(f.Options, "|"))
}

func defaultColumn(value any) string {
	if value == nil {
		return "-"
	}
	return tui.FormatValue(value)
}
