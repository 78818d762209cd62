package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rak-realm/ghostlink/internal/cli/output"
)

// PairCommand returns the pairing-code command.
func PairCommand() *cli.Command {
	return &cli.Command{
		Name:  "pair",
		Usage: "Request a pairing code for a phone number",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "number",
				Aliases:  []string{"n"},
				Usage:    "Phone number to link",
				Required: true,
			},
		},
		Action: pairAction,
	}
}

func pairAction(c *cli.Context) error {
	client := Client(c)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := client.Pair(ctx, c.String("number"))
	if err != nil {
		return err
	}

	switch outputFormat(c) {
	case output.FormatTable:
		fmt.Printf("Pairing code: %s\n", result.Code)
		fmt.Printf("Session:      %s\n", result.SessionID)
		if result.Message != "" {
			fmt.Printf("\n%s\n", result.Message)
		}
		return nil
	default:
		return Formatter(c).Format(os.Stdout, result)
	}
}

// QRCommand returns the qr subcommand group.
func QRCommand() *cli.Command {
	return &cli.Command{
		Name:  "qr",
		Usage: "QR-code linking commands",
		Subcommands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate a QR linking payload",
				Action: qrGenerateAction,
			},
			{
				Name:      "status",
				Usage:     "Query a QR session's status",
				ArgsUsage: "<session-id>",
				Action:    qrStatusAction,
			},
		},
	}
}

func qrGenerateAction(c *cli.Context) error {
	client := Client(c)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// The server holds the request until the first payload arrives, so
	// show progress in interactive mode.
	var spinner *output.Spinner
	if outputFormat(c) == output.FormatTable {
		spinner = output.NewSpinner(os.Stderr, "waiting for QR payload")
		spinner.Start()
	}

	result, err := client.GenerateQR(ctx)
	if spinner != nil {
		if err != nil {
			spinner.Fail("QR generation failed")
		} else {
			spinner.Success("QR payload ready")
		}
	}
	if err != nil {
		return err
	}

	switch outputFormat(c) {
	case output.FormatTable:
		fmt.Printf("Session: %s\n", result.SessionID)
		fmt.Printf("Payload: %s\n", result.QR)
		if result.Message != "" {
			fmt.Printf("\n%s\n", result.Message)
		}
		return nil
	default:
		return Formatter(c).Format(os.Stdout, result)
	}
}

func qrStatusAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one session ID argument")
	}
	sessionID := c.Args().First()

	client := Client(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := client.QRStatus(ctx, sessionID)
	if err != nil {
		return err
	}

	switch outputFormat(c) {
	case output.FormatTable:
		if !result.Exists {
			fmt.Printf("Session %s not found\n", sessionID)
			return nil
		}
		fmt.Printf("Session: %s\n", sessionID)
		fmt.Printf("Active:  %t\n", result.Active)
		if result.Info != nil {
			fmt.Printf("Linked:  %s\n", result.Info.Identity)
			fmt.Printf("At:      %s\n", result.Info.Timestamp.Format(time.RFC3339))
		}
		return nil
	default:
		return Formatter(c).Format(os.Stdout, result)
	}
}
