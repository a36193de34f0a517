// Package config defines the isoauth-cli configuration.
//
// The file lives at ~/.isoauth/cli.yaml and is layered under ISOAUTH_*
// environment variables and command line flags through confloader.
package config
