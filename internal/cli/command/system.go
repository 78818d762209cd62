package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rak-realm/ghostlink/internal/cli/output"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server maintenance commands",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check server health",
				Action: systemHealth,
			},
			{
				Name:   "status",
				Usage:  "Show the server's operational summary",
				Action: systemStatus,
			},
			{
				Name:   "cleanup",
				Usage:  "Remove stale session stores (requires the admin token)",
				Action: systemCleanup,
			},
		},
	}
}

func systemHealth(c *cli.Context) error {
	client := Client(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := client.Health(ctx)
	if err != nil {
		PrintError("health check failed: %v", err)
		return fmt.Errorf("server unhealthy")
	}

	switch outputFormat(c) {
	case output.FormatTable:
		if result.Status == "healthy" {
			fmt.Printf("✓ Server is healthy\n")
			fmt.Printf("  Target:  %s\n", client.BaseURL())
			fmt.Printf("  Version: %s\n", result.Version)
		} else {
			fmt.Printf("✗ Server is unhealthy: %s\n", result.Status)
		}
		return nil
	default:
		return Formatter(c).Format(os.Stdout, result)
	}
}

func systemStatus(c *cli.Context) error {
	client := Client(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := client.Status(ctx)
	if err != nil {
		return err
	}

	switch outputFormat(c) {
	case output.FormatTable:
		fmt.Printf("Server Status\n")
		fmt.Printf("=============\n\n")
		fmt.Printf("Service:          %s\n", result.Service)
		fmt.Printf("Version:          %s\n", result.Version)
		fmt.Printf("Uptime:           %s\n", (time.Duration(result.UptimeSeconds) * time.Second).String())
		fmt.Printf("Active sessions:  %d\n", result.ActiveSessions)
		fmt.Printf("Stored sessions:  %d\n", result.StoredSessions)
		fmt.Printf("Pending cleanups: %d\n", result.PendingCleanups)
		return nil
	default:
		return Formatter(c).Format(os.Stdout, result)
	}
}

func systemCleanup(c *cli.Context) error {
	client := Client(c)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cleaned, err := client.Cleanup(ctx)
	if err != nil {
		return err
	}

	switch outputFormat(c) {
	case output.FormatTable:
		fmt.Printf("Removed %d stale session store(s)\n", cleaned)
		return nil
	default:
		return Formatter(c).Format(os.Stdout, map[string]int{"cleaned": cleaned})
	}
}
