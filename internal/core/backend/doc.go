// Package backend defines the identity operations the dispatcher can run
// and their two renditions.
//
//   - capability.go: Capability, the SDK contract and TokenSource
//   - client.go: ClientBackend, delegating to a stateful SDK
//   - server.go: ServerBackend, stateless Identity Toolkit REST calls
//
// A Capability never caches sessions or tokens. ServerBackend obtains a
// freshly refreshed ID token immediately before every privileged request.
package backend
