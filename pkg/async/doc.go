// Package async provides the uniform asynchronous result types of isoauth.
//
//   - future.go: Future, a cancellable single-value result
//   - stream.go: Stream, an ordered multi-value result with a non-blocking
//     producer side
//
// Every dispatcher operation returns one of these regardless of which
// backend served it. Cancellation never panics and is a no-op once a
// result has been delivered.
package async
