// Package identitytoolkit is a REST client for the Identity Toolkit v3
// relyingparty API and the Secure Token refresh endpoint.
//
//   - config.go: identity.* and transport.* configuration
//   - endpoint.go: endpoint catalogue and RequestEnvelope
//   - transport.go: Transport interface and the rate-limited HTTP transport
//   - client.go: typed calls, one per endpoint
//   - types.go: wire request/response shapes and their domain projections
//
// Every request is a POST with a JSON body and the API key as the "key"
// query parameter. Failures surface as domain.ErrTransport (nothing usable
// came back) or domain.ErrBackendRejected (the backend answered with an
// error payload; Details holds its message verbatim).
package identitytoolkit
