package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vfxgraph/pkg/cache"
	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/graph"
	"github.com/matzehuels/vfxgraph/pkg/render"
	"github.com/matzehuels/vfxgraph/pkg/store"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path, stdout when empty
	format   string // "dot" or "svg"
	detailed bool   // port values and metadata in labels
	comments bool   // include comment nodes
	noCache  bool   // bypass the SVG cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Draw an effect graph as DOT or SVG",
		Long: `Render an effect graph with Graphviz. Systems are drawn as clusters of
contexts; port links, spawner memberships and event triggers become edges.

Rendered SVG is cached by document content and options; use --no-cache to
force a fresh render.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.format = strings.ToLower(opts.format)
			if opts.format != formatDOT && opts.format != formatSVG {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", opts.format)
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot or svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show port values and node metadata")
	cmd.Flags().BoolVar(&opts.comments, "comments", false, "include comment nodes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, src string, opts renderOpts) error {
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
	for _, is := range res.Issues {
		c.Logger.Warn(is.Message, "code", is.Code)
	}

	view := graph.FromModel(res.Graph)
	view.Version = res.Version
	ropts := render.Options{Detailed: opts.detailed, Comments: opts.comments}
	dot := render.ToDOT(view, ropts)

	out := []byte(dot)
	cached := false
	if opts.format == formatSVG {
		if out, cached, err = c.renderSVG(ctx, dot, store.ContentHash(data), ropts, opts.noCache); err != nil {
			return err
		}
	}

	if err := writeOutput(os.Stdout, opts.output, out); err != nil {
		return err
	}
	if opts.output != "" && opts.output != "-" {
		printSuccess("Rendered %s", opts.format)
		printFile(opts.output)
		if opts.format == formatSVG {
			printCacheStatus(cached)
		}
	}
	return nil
}

// renderSVG renders dot through Graphviz, consulting the render cache
// keyed by document hash and options.
func (c *CLI) renderSVG(ctx context.Context, dot, docHash string, opts render.Options, noCache bool) ([]byte, bool, error) {
	fc, err := c.newCache(noCache)
	if err != nil {
		return nil, false, err
	}
	defer fc.Close()
	svgCache := cache.NewScoped(fc, "render:")
	key := cache.Key(formatSVG, docHash, opts)

	if svg, ok, err := svgCache.Get(ctx, key); err != nil {
		c.Logger.Warn("cache read failed", "err", err)
	} else if ok {
		c.Logger.Debug("render cache hit", "key", key)
		return svg, true, nil
	}

	svg, err := withSpinner(ctx, os.Stderr, "Rendering SVG...", func(ctx context.Context) ([]byte, error) {
		return render.RenderSVG(ctx, dot)
	})
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}

	if err := svgCache.Set(ctx, key, svg, 0); err != nil {
		c.Logger.Warn("cache write failed", "err", err)
	}
	return svg, false, nil
}
