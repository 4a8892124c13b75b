package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/vfxgraph/internal/cli"
	vfxerrors "github.com/matzehuels/vfxgraph/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes unreadable input from other failures so scripts
// can tell a bad document from a broken environment.
func exitCode(err error) int {
	switch vfxerrors.GetCode(err) {
	case vfxerrors.ErrCodeMalformedDocument, vfxerrors.ErrCodeUnknownDescriptor,
		vfxerrors.ErrCodeDanglingSource, vfxerrors.ErrCodeUnsupportedVersion,
		vfxerrors.ErrCodeDanglingReference, vfxerrors.ErrCodeDuplicateID:
		return 2
	case vfxerrors.ErrCodeNotFound:
		return 3
	}
	return 1
}
