// Package localsdk is a stateful identity SDK for interactive processes.
//
// It keeps one signed-in session in memory, refreshes its ID token
// through the Secure Token endpoint when it nears expiry, and notifies
// subscribers of every session transition with a sequence number.
// Nothing is persisted.
package localsdk
