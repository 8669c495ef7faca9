package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/projsnap/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Set a CLI configuration value (" + strings.Join(config.Keys(), ", ") + ")",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := cliConfig(c)
	path, _ := c.App.Metadata[metaConfigPath].(string)

	return render(c, map[string]any{
		"file":    path,
		"server":  cfg.Server,
		"output":  cfg.Output,
		"timeout": cfg.Timeout.String(),
	})
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: config set KEY VALUE")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	cfg := *cliConfig(c)
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	path, _ := c.App.Metadata[metaConfigPath].(string)
	if err := config.Save(&cfg, path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "%s set to %s in %s\n", key, value, path)
	return nil
}
