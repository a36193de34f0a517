package command

import (
	"context"

	"github.com/yndnr/isoauth-go/internal/cli/config"
	"github.com/yndnr/isoauth-go/internal/core/backend"
	"github.com/yndnr/isoauth-go/internal/core/broadcast"
	"github.com/yndnr/isoauth-go/internal/core/domain"
	"github.com/yndnr/isoauth-go/internal/core/platform"
	"github.com/yndnr/isoauth-go/internal/core/service"
	"github.com/yndnr/isoauth-go/internal/identitytoolkit"
	"github.com/yndnr/isoauth-go/internal/infra/buildinfo"
	"github.com/yndnr/isoauth-go/internal/infra/tlsroots"
	"github.com/yndnr/isoauth-go/internal/localsdk"
	"github.com/yndnr/isoauth-go/internal/telemetry/logger"
)

// Env is everything a command needs to reach the identity backend.
//
// One-shot commands run in server context and authorize with
// --refresh-token. The REPL switches Context to client so that commands
// act on the local SDK session.
type Env struct {
	Config      *config.CLIConfig
	Client      *identitytoolkit.Client
	SDK         *localsdk.SDK
	Broadcaster *broadcast.Broadcaster
	Context     *platform.Switch
	Dispatcher  *service.Dispatcher
}

// NewEnv wires the dispatcher for cfg.
func NewEnv(cfg *config.CLIConfig, log logger.Logger) (*Env, error) {
	mode, err := platform.ParseMode(cfg.Context.Mode)
	if err != nil {
		return nil, err
	}
	initial := platform.Server
	if mode == platform.ModeClient {
		initial = platform.Client
	}

	transportCfg := cfg.Transport
	transportCfg.UserAgent = buildinfo.UserAgent()
	transport := identitytoolkit.NewHTTPTransport(transportCfg)
	if transportCfg.CAFile != "" {
		roots, err := tlsroots.LoadCAFile(transportCfg.CAFile)
		if err != nil {
			return nil, domain.ErrInvalidConfig.WithDetails("transport.ca_file").WithCause(err)
		}
		transport.WithRootCAs(roots.CertPool())
	}
	client := identitytoolkit.NewClient(cfg.Identity, transport)

	sdk := localsdk.New(client, localsdk.WithLogger(log))
	b := broadcast.New(sdk, broadcast.WithLogger(log))
	b.Start()

	sw := platform.NewSwitch(initial)
	return &Env{
		Config:      cfg,
		Client:      client,
		SDK:         sdk,
		Broadcaster: b,
		Context:     sw,
		Dispatcher: service.NewDispatcher(service.Config{
			Oracle:      sw,
			Client:      backend.NewClientBackend(sdk),
			Server:      backend.NewServerBackend(client, sdk, nil),
			Broadcaster: b,
			Logger:      log,
		}),
	}, nil
}

// Authorize prepares ctx for a privileged call. In server context the
// refresh token becomes the call's token source; in client context it
// restores the SDK session when none is signed in.
func (e *Env) Authorize(ctx context.Context, refreshToken string) (context.Context, error) {
	if refreshToken == "" {
		return ctx, nil
	}
	if e.Context.Current() == platform.Server {
		return backend.ContextWithTokenSource(ctx, identitytoolkit.NewRefreshTokenSource(e.Client, refreshToken)), nil
	}
	if e.SDK.CurrentSession() == nil {
		if _, err := e.SDK.Restore(ctx, refreshToken); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// Close stops event delivery.
func (e *Env) Close() {
	e.Broadcaster.Close()
}
