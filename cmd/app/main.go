package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/habitdash/internal"
	"github.com/starford/habitdash/internal/journal"
	pkgconfig "github.com/starford/habitdash/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func report(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r, err := journal.ParseRange(cmd.String("start"), cmd.String("end"))
	if err != nil {
		return err
	}

	return internal.Report(ctx, internal.ReportOptions{
		Range: r,
		JSON:  cmd.Bool("json"),
		Out:   os.Stdout,
	}, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:   "habitdash",
		Usage:  "Habit tracker dashboard built from #habit tags in Logseq journals",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when it does not exist)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP dashboard and API (default)",
				Action: serve,
			},
			{
				Name:  "report",
				Usage: "Print habit statistics once",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "First journal day (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "end", Usage: "Last journal day (YYYY-MM-DD)"},
					&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a calendar"},
				},
				Action: report,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
