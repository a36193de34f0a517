// Package tlsroots loads TLS material for both sides of the gateway.
//
// Pool holds the roots trusted when calling the identity REST API; a
// CA bundle is needed when an emulator or an intercepting proxy sits in
// front of it. Watcher serves the gateway's own certificate and reloads
// it when the files on disk change.
package tlsroots
