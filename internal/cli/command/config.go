package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/isoauth-go/internal/cli/config"
	"github.com/yndnr/isoauth-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the CLI configuration file",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration with secrets masked",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := config.Sanitize(configFrom(c))

	format := output.FormatYAML
	if c.IsSet("output") {
		f, err := output.ParseFormat(c.String("output"))
		if err != nil {
			return err
		}
		if f == output.FormatJSON {
			format = f
		}
	}
	if format == output.FormatYAML {
		fmt.Fprintf(writer(c), "# %s\n", configPath(c))
	}
	return output.NewFormatter(format).Format(writer(c), cfg)
}

func configInit(c *cli.Context) error {
	path := configPath(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(configFrom(c), path); err != nil {
		return err
	}
	fmt.Fprintf(writer(c), "wrote %s\n", path)
	return nil
}

func configPath(c *cli.Context) string {
	if p, ok := c.App.Metadata[metaConfigPath].(string); ok && p != "" {
		return p
	}
	return config.DefaultConfigPath()
}
