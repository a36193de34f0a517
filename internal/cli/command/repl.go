package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/isoauth-go/internal/cli/repl"
	"github.com/yndnr/isoauth-go/internal/core/platform"
)

// ReplCommand returns the interactive mode command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive mode on a local session",
		Description: "Commands act on a session held by this process and session changes are " +
			"printed as they happen. --refresh-token resumes an earlier session.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file (default ~/.isoauth/history)",
				Value: repl.DefaultHistoryFile(),
			},
		},
		Action: runRepl,
	}
}

func runRepl(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	env.Context.Set(platform.Client)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	if rt := c.String("refresh-token"); rt != "" {
		if _, err := env.SDK.Restore(ctx, rt); err != nil {
			return err
		}
	}

	commands := authCommands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name)
	}

	var r *repl.REPL
	exec := func(ctx context.Context, args []string) error {
		app := newApp(authCommands()...)
		app.Metadata[metaConfig] = env.Config
		app.Metadata[metaEnv] = env
		app.Writer = r.Output()
		app.ErrWriter = r.Output()
		return app.RunContext(ctx, append([]string{appName}, args...))
	}
	r = repl.New(exec, names,
		repl.WithIO(c.App.Reader, writer(c)),
		repl.WithHistory(repl.NewHistory(c.String("history"), repl.DefaultHistorySize)))

	events := env.Dispatcher.ObserveCurrentProfile(ctx)
	defer events.Cancel()
	go r.Follow(ctx, events.C())

	return r.Run(ctx)
}
