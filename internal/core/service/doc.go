// Package service provides the identity operation dispatcher.
//
// Dispatcher exposes one method per identity operation. Each call asks
// the platform oracle which context it runs in, selects the client (SDK)
// or server (REST) capability, and returns an async.Future. Auth-state
// accessors return async.Streams fed by the broadcaster in client
// context and by a single profile lookup in server context.
package service
