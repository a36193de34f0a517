// Command isoauth-cli runs identity operations from the shell.
//
// Usage:
//
//	isoauth-cli signin --email a@example.com --password secret
//	isoauth-cli --refresh-token "$RT" profile
//	isoauth-cli -o json providers --email a@example.com
//	isoauth-cli repl
//
// The API key comes from ~/.isoauth/cli.yaml, ISOAUTH_IDENTITY__API_KEY
// or --api-key.
package main
