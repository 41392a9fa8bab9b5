package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/spacing"
)

// tableCommand prints the spacing rules, or explains a single pair.
func (c *CLI) tableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "table [current [next]]",
		Short: "Show the spacing offset for every pair of layer kinds",
		Long: `Show the offset applied after a layer given the kind of the layer that
follows it. With one argument the table is limited to that kind; with two
the matching rule is explained. Omitting next means the layer is last.`,
		Example: `  stackbuilder table
  stackbuilder table label
  stackbuilder table top re`,
		Args:              cobra.MaximumNArgs(2),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := make([]layer.Kind, len(args))
			for i, a := range args {
				k, err := layer.ParseKind(a)
				if err != nil {
					return err
				}
				kinds[i] = k
			}
			w := cmd.OutOrStdout()
			switch len(kinds) {
			case 2:
				explainPair(w, kinds[0], kinds[1])
			case 1:
				fmt.Fprintln(w, renderSpacingTable(filterEntries(spacing.Table(), &kinds[0])))
			default:
				fmt.Fprintln(w, renderSpacingTable(spacing.Table()))
			}
			return nil
		},
	}
}

func filterEntries(entries []spacing.Entry, current *layer.Kind) []spacing.Entry {
	if current == nil {
		return entries
	}
	var out []spacing.Entry
	for _, e := range entries {
		if e.Current == *current {
			out = append(out, e)
		}
	}
	return out
}

func explainPair(w io.Writer, current, next layer.Kind) {
	off, rule := spacing.Explain(current, next, true)
	fmt.Fprintf(w, "%s %s %s  %s  %s\n",
		StyleValue.Render(current.String()),
		StyleDim.Render(iconArrow),
		StyleValue.Render(next.String()),
		StyleNumber.Render(fmt.Sprintf("%+d", off)),
		StyleDim.Render(fmt.Sprintf("(rule %d: %s)", int(rule), rule)))
}

func renderSpacingTable(entries []spacing.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Current.String(),
			e.NextString(),
			fmt.Sprintf("%+d", e.Offset),
			fmt.Sprintf("%d %s", int(e.Rule), e.Rule),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Current", "Next", "Offset", "Rule").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2 && entries[row].Offset < 0:
				return cell.Foreground(colorCyan).Align(lipgloss.Right)
			case col == 2:
				return cell.Foreground(colorGreen).Align(lipgloss.Right)
			case col == 3:
				return cell.Foreground(colorDim)
			}
			return cell
		}).
		Render()
}
