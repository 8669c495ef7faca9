package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/projsnap/internal/cli/config"
	"github.com/yndnr/projsnap/internal/cli/connection"
	"github.com/yndnr/projsnap/internal/cli/output"
	"github.com/yndnr/projsnap/internal/infra/buildinfo"
)

// Metadata keys set in App.Before.
const (
	metaConfig     = "cliConfig"
	metaConfigPath = "cliConfigPath"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "projsnap",
		Usage:   "Capture, inspect and restore project snapshots",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SnapshotCommand(),
			SystemCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			path := c.String("config")
			if path == "" {
				path = config.DefaultConfigPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			c.App.Metadata[metaConfig] = cfg
			c.App.Metadata[metaConfigPath] = path
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "projsnap-server address (default from CLI config, e.g. 127.0.0.1:5090)",
			EnvVars: []string{"PROJSNAP_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			EnvVars: []string{"PROJSNAP_CLI_CONFIG"},
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Wide    bool
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context, falling back to the
// CLI config for values not given on the command line.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	cfg := cliConfig(c)

	flags := &GlobalFlags{
		Server:  c.String("server"),
		Output:  output.Format(c.String("output")),
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
	if flags.Server == "" {
		flags.Server = cfg.Server
	}
	if flags.Output == "" {
		flags.Output = output.Format(cfg.Output)
	}
	return flags
}

// cliConfig returns the loaded CLI config, or the defaults when Before did
// not run.
func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// EnsureConnected builds the HTTP client for the selected server.
func EnsureConnected(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	if flags.Server == "" {
		return nil, fmt.Errorf("no server configured; use --server or 'projsnap config set server ADDR'")
	}

	client := connection.NewHTTPClient(flags.Server, cliConfig(c).Timeout)
	if flags.Verbose {
		fmt.Fprintf(c.App.ErrWriter, "server: %s\n", client.BaseURL())
	}
	return client, nil
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(string(flags.Output))
	if err != nil {
		return err
	}
	return output.NewFormatter(format, flags.Wide).Format(c.App.Writer, data)
}

// tableOutput reports whether results are printed for humans.
func tableOutput(c *cli.Context) bool {
	return ParseGlobalFlags(c).Output == output.FormatTable
}

// withSpinner runs fn while showing a spinner on a terminal stderr.
func withSpinner(c *cli.Context, message string, fn func(ctx context.Context) error) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	f, ok := c.App.ErrWriter.(*os.File)
	if !ok || !tableOutput(c) || !isatty.IsTerminal(f.Fd()) {
		return fn(ctx)
	}

	s := output.NewSpinner(f, message)
	s.Start()
	err := fn(ctx)
	s.Stop()
	return err
}

// confirm asks a yes/no question on the app's reader. Anything but y/yes is no.
func confirm(c *cli.Context, prompt string) bool {
	fmt.Fprintf(c.App.Writer, "%s [y/N]: ", prompt)

	answer, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// requireID returns the first positional argument.
func requireID(c *cli.Context) (string, error) {
	id := c.Args().First()
	if id == "" {
		return "", fmt.Errorf("snapshot ID required")
	}
	return id, nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
