// Package shutdown coordinates graceful process shutdown.
//
// Components register hooks with OnShutdown as they start; Wait runs them
// in reverse order so that later components, which may depend on earlier
// ones, stop first.
package shutdown
