package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vfxgraph/pkg/asset"
	"github.com/matzehuels/vfxgraph/pkg/graph"
	"github.com/matzehuels/vfxgraph/pkg/schema"
	"github.com/matzehuels/vfxgraph/pkg/serial"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	json      bool // print the node-link view instead of a summary
	tui       bool // open the interactive browser
	fromStore bool // treat the argument as an asset name
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <file|->",
		Short: "Summarize an effect graph document",
		Long: `Decode an effect graph document and print its schema version, size and
any recoverable issues. Use --json for the full node-link view or --tui to
browse the graph interactively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the JSON node-link view")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "browse the graph interactively")
	cmd.Flags().BoolVar(&opts.fromStore, "asset", false, "read the named asset from the configured store")
	cmd.MarkFlagsMutuallyExclusive("json", "tui")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, src string, opts inspectOpts) error {
	res, err := c.decode(ctx, src, opts.fromStore)
	if err != nil {
		return err
	}

	view := graph.FromModel(res.Graph)
	view.Version = res.Version

	switch {
	case opts.json:
		return graph.Write(view, os.Stdout)
	case opts.tui:
		_, err := tea.NewProgram(newBrowserModel(view, src), tea.WithAltScreen()).Run()
		return err
	}

	fmt.Println(StyleTitle.Render(src))
	printGraphStats(res.Version, res.Graph.Stats())
	printNewline()
	printIssues(res.Issues)
	if res.Version > 0 && res.Version < schema.Current {
		printNewline()
		printNextStep("Upgrade to the current version", fmt.Sprintf("%s upgrade %s -o %s", appName, src, src))
	}
	return nil
}

// decode reads src as a file or, with fromStore, as an asset name.
func (c *CLI) decode(ctx context.Context, src string, fromStore bool) (*serial.Result, error) {
	ser, err := c.serializer()
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)

	var res *serial.Result
	if fromStore {
		st, err := c.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		res, err = asset.Load(ctx, st, ser, src)
		if err != nil {
			return nil, err
		}
	} else {
		data, err := readInput(src)
		if err != nil {
			return nil, err
		}
		if res, err = ser.Unmarshal(data); err != nil {
			return nil, err
		}
	}

	c.Logger.Debug("decoded", "source", src, "version", res.Version, "issues", len(res.Issues))
	prog.done("Decoded " + src)
	return res, nil
}
