package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vfxgraph/pkg/schema"
)

// schemaCommand prints the version policy table.
func (c *CLI) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show which document fields each schema version carries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Schema versions"))
			printKeyValue("Current", StyleNumber.Render(strconv.Itoa(schema.Current)))
			printNewline()
			fmt.Println(schemaTable(schema.Rules()))
			return nil
		},
	}
}

func schemaTable(rules []schema.Rule) string {
	rows := make([][]string, len(rules))
	for i, r := range rules {
		rows[i] = []string{strconv.Itoa(r.Since), r.Field.String(), r.Description}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Since", "Field", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan).Align(lipgloss.Right)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
