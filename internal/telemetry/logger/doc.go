// Package logger provides structured logging for isoauth.
//
//   - logger.go: slog-backed Logger, level control, package-level default
//   - context.go: request and trace correlation carried in context.Context
//   - redact.go: masking of passwords, tokens, OOB codes and API keys
//
// Identity calls carry credentials in almost every payload, so the
// redacting ReplaceAttr hook is installed on every handler New builds.
package logger
