package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/projsnap/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server status commands",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check server health",
				Action: systemHealth,
			},
			{
				Name:   "status",
				Usage:  "Show server readiness and snapshot count",
				Action: systemStatus,
			},
			{
				Name:   "version",
				Usage:  "Show CLI build information",
				Action: systemVersion,
			},
		},
	}
}

func systemHealth(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	var result struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}
	if err := client.GetJSON(c.Context, "/health", &result); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if !tableOutput(c) {
		return render(c, result)
	}
	if result.Status == "healthy" {
		fmt.Fprintf(c.App.Writer, "✓ Server is healthy\n")
		fmt.Fprintf(c.App.Writer, "  Target: %s\n", client.BaseURL())
		return nil
	}
	fmt.Fprintf(c.App.Writer, "✗ Server is unhealthy: %s\n", result.Status)
	return fmt.Errorf("server unhealthy")
}

func systemStatus(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	var result map[string]any
	if err := client.GetJSON(c.Context, "/ready", &result); err != nil {
		return err
	}
	return render(c, result)
}

func systemVersion(c *cli.Context) error {
	return render(c, buildinfo.Get().Map())
}
