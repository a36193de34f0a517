// Package handler implements the isoauth gateway's HTTP API.
//
// Every /v1/auth route runs one dispatcher operation. Privileged routes
// read the caller's refresh token from X-Refresh-Token and exchange it
// for a fresh ID token on each request; the gateway stores nothing.
package handler
