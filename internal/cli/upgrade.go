package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vfxgraph/pkg/asset"
	"github.com/matzehuels/vfxgraph/pkg/schema"
)

// upgradeCommand creates the upgrade command.
func (c *CLI) upgradeCommand() *cobra.Command {
	var output string
	var fromStore bool

	cmd := &cobra.Command{
		Use:   "upgrade <file|->",
		Short: "Rewrite a document at the current schema version",
		Long: `Read a document of any supported version and write it back at the current
version. Nothing is written if the document cannot be read or rewritten,
so upgrading a file in place never leaves it half-written.

With --asset the argument names a stored asset, which is replaced by a new
revision.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStore {
				return c.runUpgradeAsset(cmd.Context(), args[0])
			}
			return c.runUpgrade(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&fromStore, "asset", false, "upgrade the named asset in the configured store")
	cmd.MarkFlagsMutuallyExclusive("output", "asset")

	return cmd
}

func (c *CLI) runUpgrade(src, output string) error {
	ser, err := c.serializer()
	if err != nil {
		return err
	}
	data, err := readInput(src)
	if err != nil {
		return err
	}
	out, res, err := ser.Upgrade(data)
	if err != nil {
		return err
	}
	if err := writeOutput(os.Stdout, output, out); err != nil {
		return err
	}

	c.Logger.Info("upgraded", "from", res.Version, "to", schema.Current, "issues", len(res.Issues))
	for _, is := range res.Issues {
		c.Logger.Warn(is.Message, "code", is.Code)
	}
	if output != "" && output != "-" {
		printSuccess("Upgraded version %d to %d", res.Version, schema.Current)
		printFile(output)
	}
	return nil
}

func (c *CLI) runUpgradeAsset(ctx context.Context, name string) error {
	ser, err := c.serializer()
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rev, res, err := asset.Upgrade(ctx, st, ser, name)
	if err != nil {
		return err
	}
	printSuccess("Upgraded %s from version %d to %d", name, res.Version, schema.Current)
	printDetail("Revision: %s", rev.ID)
	printIssues(res.Issues)
	return nil
}
