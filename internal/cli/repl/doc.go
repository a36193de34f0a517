// Package repl is the interactive mode of isoauth-cli.
//
// Lines are split shell-style and handed to an Executor; the command
// package runs them through the same urfave/cli commands as one-shot
// mode. Follow prints session changes as they arrive.
package repl
