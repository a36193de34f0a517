// Command isoauth-server is the stateless identity gateway.
//
// It exposes the identity operations over HTTP and forwards each one to
// the identity REST backend. The server keeps no session: privileged
// routes take the caller's refresh token in X-Refresh-Token and mint a
// fresh ID token for every call.
//
// Usage:
//
//	isoauth-server [--config /etc/isoauth/server.yaml] [--addr :5180]
//
// Configuration is layered defaults, file, ISOAUTH_* environment, flags.
// Changing log.level in the file takes effect without a restart.
package main
