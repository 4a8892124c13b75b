package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vfxgraph/pkg/errors"
)

// Execute builds the root command and runs it with ctx. Logging goes to
// stderr at info level, or debug level with --verbose. Failures are printed
// to stderr before being returned; cancellation is returned silently.
//
// Example:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	if err := cli.Execute(ctx); err != nil {
//	    os.Exit(1)
//	}
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		return nil
	}

	err := root.ExecuteContext(ctx)
	if err != nil && ctx.Err() == nil {
		printError("%s", errors.UserMessage(err))
	}
	return err
}
