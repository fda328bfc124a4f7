package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/starford/habitdash/internal/dashboard"
	"github.com/starford/habitdash/internal/journal"
	"github.com/starford/habitdash/internal/mcpserver"
	"github.com/starford/habitdash/internal/metrics"
	"github.com/starford/habitdash/internal/slot"
)

// ReportOptions controls a one-shot report.
type ReportOptions struct {
	Range journal.Range
	JSON  bool
	Out   io.Writer
}

// Report prints the habit statistics once, as a terminal calendar or as
// JSON, and returns host errors to the caller.
func Report(ctx context.Context, ro ReportOptions, opts ...Option) error {
	app, logger, _, err := setup(opts)
	if err != nil {
		return err
	}
	if ro.Out == nil {
		ro.Out = os.Stdout
	}

	board := slot.NewBoard(nil, logger)
	svc := newService(app.config, app.provider, board, logger, metrics.New(nil))

	stats, err := svc.Stats(ctx, ro.Range)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if ro.JSON {
		enc := json.NewEncoder(ro.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"habits": stats})
	}
	dashboard.Terminal(ro.Out, stats, svc.Now())
	return nil
}

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, logger, _, err := setup(opts)
	if err != nil {
		return err
	}

	board := slot.NewBoard(nil, logger)
	svc := newService(app.config, app.provider, board, logger, metrics.New(nil))

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svc, board, app.config.Dashboard.Slot).ServeStdio()
}
