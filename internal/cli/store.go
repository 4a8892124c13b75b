package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vfxgraph/pkg/asset"
	"github.com/matzehuels/vfxgraph/pkg/store"
)

// storeCommand creates the asset store command group.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage assets in the configured store",
		Long: `Put, get, list and remove effect graph assets. The backend (file, redis,
mongo or s3) is selected by the [store] section of the config file or by
VFXGRAPH_STORE.`,
	}

	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeRemoveCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) storePutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <file|->",
		Short: "Store a document as a new revision of an asset",
		Long: `Decode the document and store it at the current schema version. Documents
that cannot be read are rejected and the stored revision is kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src := args[0], args[1]
			if err := store.ValidateName(name); err != nil {
				return err
			}
			ser, err := c.serializer()
			if err != nil {
				return err
			}
			data, err := readInput(src)
			if err != nil {
				return err
			}
			res, err := ser.Unmarshal(data)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				rev, err := asset.Save(cmd.Context(), st, ser, name, res.Graph)
				if err != nil {
					return err
				}
				printSuccess("Stored %s", StyleHighlight.Render(name))
				printDetail("Revision: %s", rev.ID)
				printDetail("Size: %d bytes, hash %s", rev.Size, rev.Hash)
				printIssues(res.Issues)
				return nil
			})
		},
	}
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print or save the latest revision of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				doc, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				c.Logger.Debug("loaded asset", "name", doc.Name, "revision", doc.ID, "size", doc.Size)
				if err := writeOutput(os.Stdout, output, doc.Data); err != nil {
					return err
				}
				if output != "" && output != "-" {
					printSuccess("Fetched %s (revision %s)", args[0], doc.ID)
					printFile(output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored assets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				revs, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(revs) == 0 {
					printInfo("No assets stored")
					return nil
				}
				fmt.Println(revisionTable(revs, time.Now()))
				return nil
			})
		},
	}
}

func (c *CLI) storeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Remove an asset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Removed %s", args[0])
				return nil
			})
		},
	}
}

func revisionTable(revs []store.Revision, now time.Time) string {
	rows := make([][]string, len(revs))
	for i, r := range revs {
		rows[i] = []string{r.Name, strconv.Itoa(r.Size), r.Hash, formatRelativeTime(r.SavedAt, now), shortID(r.ID)}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Bytes", "Hash", "Saved", "Revision").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorGreen)
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorCyan).Align(lipgloss.Right)
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		}).
		Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
