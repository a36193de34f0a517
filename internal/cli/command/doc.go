// Package command defines the isoauth-cli commands using urfave/cli/v2.
//
//   - root.go: application, global flags, config loading
//   - env.go: dispatcher wiring shared by all commands
//   - auth.go: one command per identity operation
//   - config.go: config show and init
//   - repl.go: interactive mode on a local session
//
// One-shot commands run in server context: nothing is remembered between
// invocations and privileged commands authorize with --refresh-token.
package command
