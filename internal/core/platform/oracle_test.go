package platform

import (
	"errors"
	"testing"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

type fixedOracle struct {
	server, client bool
}

func (o fixedOracle) IsServer() bool { return o.server }
func (o fixedOracle) IsClient() bool { return o.client }

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		oracle  Oracle
		want    Context
		wantErr bool
	}{
		{"server", Static(Server), Server, false},
		{"client", Static(Client), Client, false},
		{"func server", Func(func() bool { return true }), Server, false},
		{"func client", Func(func() bool { return false }), Client, false},
		{"neither", fixedOracle{}, Unknown, true},
		{"both", fixedOracle{server: true, client: true}, Unknown, true},
		{"nil", nil, Unknown, true},
		{"static unknown", Static(Unknown), Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.oracle)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrUnsupportedInContext) {
				t.Errorf("Resolve() error = %v, want ErrUnsupportedInContext", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSwitch(t *testing.T) {
	s := NewSwitch(Server)
	if got, _ := Resolve(s); got != Server {
		t.Errorf("Resolve() = %v, want server", got)
	}

	s.Set(Client)
	if got, _ := Resolve(s); got != Client {
		t.Errorf("Resolve() after Set = %v, want client", got)
	}
}

func TestContext_String(t *testing.T) {
	if Server.String() != "server" || Client.String() != "client" || Unknown.String() != "unknown" {
		t.Error("unexpected Context.String() values")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"Server", ModeServer, false},
		{" client ", ModeClient, false},
		{"browser", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromMode(t *testing.T) {
	if got, _ := Resolve(FromMode(ModeServer)); got != Server {
		t.Errorf("FromMode(server) resolved to %v", got)
	}
	if got, _ := Resolve(FromMode(ModeClient)); got != Client {
		t.Errorf("FromMode(client) resolved to %v", got)
	}
	if _, err := Resolve(FromMode(ModeAuto)); err != nil {
		t.Errorf("FromMode(auto) should always resolve, got %v", err)
	}
}
