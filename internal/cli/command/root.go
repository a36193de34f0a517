package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/isoauth-go/internal/cli/config"
	"github.com/yndnr/isoauth-go/internal/cli/output"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/infra/buildinfo"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
)

const appName = "isoauth-cli"

// Metadata keys shared between Before and the actions.
const (
	metaConfig     = "config"
	metaConfigPath = "configPath"
	metaEnv        = "env"
)

// App creates the CLI application.
func App() *cli.App {
	app := newApp(append(authCommands(), ConfigCommand(), ReplCommand())...)
	app.Before = before
	app.After = after
	return app
}

func newApp(commands ...*cli.Command) *cli.App {
	return &cli.App{
		Name:                 appName,
		Usage:                "Identity session command-line client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             commands,
		Metadata:             map[string]any{},
		EnableBashCompletion: true,
		ExitErrHandler:       func(*cli.Context, error) {},
	}
}

// globalFlags returns the flags available to every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.isoauth/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"k"},
			Usage:   "Identity API key",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "Identity relyingparty base URL",
		},
		&cli.StringFlag{
			Name:  "token-endpoint",
			Usage: "Secure token endpoint URL",
		},
		&cli.StringFlag{
			Name:    "refresh-token",
			Aliases: []string{"r"},
			Usage:   "Refresh token authorizing privileged commands",
			EnvVars: []string{"ISOAUTH_REFRESH_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "context",
			Usage: "Execution context for one-shot commands: server or client",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log diagnostics to stderr",
		},
	}
}

// overrides maps global flags onto configuration keys.
func overrides(c *cli.Context) map[string]any {
	m := map[string]any{}
	for flag, key := range map[string]string{
		"api-key":        "identity.api_key",
		"endpoint":       "identity.endpoint",
		"token-endpoint": "identity.token_endpoint",
		"output":         "output",
		"context":        "context.mode",
	} {
		if c.IsSet(flag) {
			m[key] = c.String(flag)
		}
	}
	if c.Bool("verbose") {
		m["log.level"] = "debug"
	}
	return m
}

func before(c *cli.Context) error {
	path := c.String("config")
	cfg, err := config.Load(path, overrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if path == "" {
		path = config.DefaultConfigPath()
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: errWriter(c),
	})
	if err != nil {
		return err
	}
	logger.SetDefault(log)

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaConfigPath] = path
	return nil
}

func after(c *cli.Context) error {
	if env, ok := c.App.Metadata[metaEnv].(*Env); ok {
		env.Close()
	}
	return nil
}

func configFrom(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// envFrom returns the command environment, building it on first use.
// Commands that never reach the backend do not need an API key.
func envFrom(c *cli.Context) (*Env, error) {
	if env, ok := c.App.Metadata[metaEnv].(*Env); ok {
		return env, nil
	}
	cfg := configFrom(c)
	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	env, err := NewEnv(cfg, logger.Default())
	if err != nil {
		return nil, err
	}
	c.App.Metadata[metaEnv] = env
	return env, nil
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	name := configFrom(c).Output
	if c.IsSet("output") {
		name = c.String("output")
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(writer(c), data)
}

// message prints a confirmation line unless a machine format is selected.
func message(c *cli.Context, format string, args ...any) {
	name := configFrom(c).Output
	if c.IsSet("output") {
		name = c.String("output")
	}
	if f, _ := output.ParseFormat(name); f == output.FormatTable {
		fmt.Fprintf(writer(c), format+"\n", args...)
	}
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrMissingAPIKey), errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrInvalidArgument):
		return 2
	case errors.Is(err, domain.ErrBackendRejected), errors.Is(err, domain.ErrNoSession):
		return 3
	case errors.Is(err, domain.ErrTransport):
		return 4
	default:
		return 1
	}
}
