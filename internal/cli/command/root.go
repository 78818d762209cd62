package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rak-realm/ghostlink/internal/cli/config"
	"github.com/rak-realm/ghostlink/internal/cli/connection"
	"github.com/rak-realm/ghostlink/internal/cli/output"
	"github.com/rak-realm/ghostlink/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "ghost-cli",
		Usage:   "ghostlink device-linking management tool",
		Version: buildinfo.Get().String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PairCommand(),
			QRCommand(),
			SystemCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			c.App.Metadata["config"] = cfg
			return nil
		},
		Metadata: map[string]any{},
	}

	return app
}

// globalFlags returns the global CLI flags. Empty defaults let the
// config file fill in values the user did not pass.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to the CLI config file",
			EnvVars: []string{"GHOSTLINK_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "ghostlink server address (e.g., localhost:3000)",
			EnvVars: []string{"GHOSTLINK_SERVER"},
		},
		&cli.StringFlag{
			Name:    "admin-token",
			Usage:   "Admin token for maintenance commands",
			EnvVars: []string{"GHOSTLINK_ADMIN_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "Request timeout in seconds",
		},
	}
}

// loadedConfig returns the config file loaded in Before, or defaults
// when the action runs outside the app (tests).
func loadedConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata["config"].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// Client builds the API client from flags, falling back to the config
// file for anything unset.
func Client(c *cli.Context) *connection.Client {
	cfg := loadedConfig(c)

	server := c.String("server")
	if server == "" {
		server = cfg.Server
	}
	token := c.String("admin-token")
	if token == "" {
		token = cfg.AdminToken
	}
	timeout := time.Duration(c.Int("timeout")) * time.Second
	if timeout == 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return connection.NewClient(server, token, timeout)
}

// Formatter builds the output formatter from the flags and config.
func Formatter(c *cli.Context) output.Formatter {
	return output.NewFormatter(outputFormat(c))
}

func outputFormat(c *cli.Context) output.Format {
	format := c.String("output")
	if format == "" {
		format = loadedConfig(c).Output
	}
	return output.Format(format)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
