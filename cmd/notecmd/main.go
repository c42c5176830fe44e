package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notecmd/internal"
	pkgconfig "github.com/starford/notecmd/pkg/config"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

func runNames(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return fmt.Errorf("at least one command name is required")
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	// Each argument may itself be a comma-separated list.
	names := strings.Join(cmd.Args().Slice(), ",")
	return internal.RunOnce(ctx, names, cmd.String("date"), opts...)
}

func resolve(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("exactly one template is required")
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Resolve(ctx, cmd.Args().First(), cmd.String("date"), opts...)
}

func main() {
	dateFlag := &cli.StringFlag{
		Name:    "date",
		Aliases: []string{"d"},
		Usage:   "Date for create-with-date commands: today, yesterday, tomorrow or YYYY-MM-DD",
	}

	cmd := &cli.Command{
		Name:   "notecmd",
		Usage:  "User-defined note commands with date placeholders and command sequences",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API and event stream",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
			{
				Name:      "run",
				Usage:     "Run commands by display name, in order",
				ArgsUsage: "NAME...",
				Flags:     []cli.Flag{dateFlag},
				Action:    runNames,
			},
			{
				Name:      "resolve",
				Usage:     "Print a template with its placeholders expanded",
				ArgsUsage: "TEMPLATE",
				Flags:     []cli.Flag{dateFlag},
				Action:    resolve,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
