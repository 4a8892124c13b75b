package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vfxgraph/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the inspect, upgrade, schema and asset routes over HTTP until
interrupted. The listen address defaults to the [server] section of the
config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	ser, err := c.serializer()
	if err != nil {
		return err
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(ser, st, server.Options{
		CacheSize: cfg.Server.CacheSize,
		MaxBody:   cfg.Server.MaxBody,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}
	printInfo("Serving on %s (store: %s)", StyleHighlight.Render(addr), cfg.Store.Backend)
	return srv.Run(ctx, addr)
}
