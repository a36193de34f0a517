// Package platform reports which execution context isoauth runs in.
//
// Server context is a non-interactive rendering process (one-shot CLI
// commands, the HTTP gateway); client context is an interactive session
// (the REPL) that owns a long-lived local SDK.
package platform

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// Context is the resolved execution context.
type Context int

const (
	// Unknown is never returned by Resolve without an error.
	Unknown Context = iota
	Server
	Client
)

// String returns the lowercase context name.
func (c Context) String() string {
	switch c {
	case Server:
		return "server"
	case Client:
		return "client"
	default:
		return "unknown"
	}
}

// Oracle reports the current execution context. Implementations must be
// cheap and side-effect free; callers query them on every dispatch.
type Oracle interface {
	IsServer() bool
	IsClient() bool
}

// Resolve evaluates the oracle and returns exactly one context.
// It fails with ErrUnsupportedInContext when the oracle reports neither
// or both.
func Resolve(o Oracle) (Context, error) {
	if o == nil {
		return Unknown, domain.ErrUnsupportedInContext.WithDetails("no context oracle configured")
	}
	server, client := o.IsServer(), o.IsClient()
	switch {
	case server && !client:
		return Server, nil
	case client && !server:
		return Client, nil
	case server && client:
		return Unknown, domain.ErrUnsupportedInContext.WithDetails("oracle reported both server and client context")
	default:
		return Unknown, domain.ErrUnsupportedInContext.WithDetails("oracle reported neither server nor client context")
	}
}

// Static is an oracle fixed to one context.
type Static Context

func (s Static) IsServer() bool { return Context(s) == Server }
func (s Static) IsClient() bool { return Context(s) == Client }

// Func adapts a predicate: true means server context.
type Func func() bool

func (f Func) IsServer() bool { return f() }
func (f Func) IsClient() bool { return !f() }

// Switch is an oracle whose context can change between calls, e.g. when
// a pre-rendered page hands over to an interactive session.
type Switch struct {
	ctx atomic.Int32
}

// NewSwitch creates a Switch starting in ctx.
func NewSwitch(ctx Context) *Switch {
	s := &Switch{}
	s.Set(ctx)
	return s
}

// Set changes the reported context.
func (s *Switch) Set(ctx Context) {
	s.ctx.Store(int32(ctx))
}

// Current returns the reported context.
func (s *Switch) Current() Context {
	return Context(s.ctx.Load())
}

func (s *Switch) IsServer() bool { return s.Current() == Server }
func (s *Switch) IsClient() bool { return s.Current() == Client }

// Mode is the configured context selection.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeServer Mode = "server"
	ModeClient Mode = "client"
)

// ParseMode parses a context.mode configuration value.
// Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeServer:
		return ModeServer, nil
	case ModeClient:
		return ModeClient, nil
	default:
		return "", domain.ErrInvalidConfig.WithDetails("context.mode must be auto, server or client, got " + s)
	}
}

// FromMode builds the oracle for a configured mode. Auto reports client
// context while stdin is an interactive terminal.
func FromMode(m Mode) Oracle {
	switch m {
	case ModeServer:
		return Static(Server)
	case ModeClient:
		return Static(Client)
	default:
		return Func(func() bool { return !isTerminal(os.Stdin) })
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
