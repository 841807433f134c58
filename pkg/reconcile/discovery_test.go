package reconcile

import (
	"testing"

	"github.com/creasty/defaults"
)

func TestSrvName(t *testing.T) {
	type args struct {
		service string
		domain  string
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "plain",
			args: args{
				service: "state-reconciler",
				domain:  "server.local",
			},
			want: "_state-reconciler._tcp.server.local.",
		},
		{
			name: "dotted-domain",
			args: args{
				service: "state-reconciler",
				domain:  ".server.local.",
			},
			want: "_state-reconciler._tcp.server.local.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := srvName(tt.args.service, tt.args.domain); got != tt.want {
				t.Errorf("srvName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveEndpoint_discoveryDisabled(t *testing.T) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		t.Fatalf("defaults.Set() error = %v", err)
	}
	cfg.HTTP.Endpoint = "https://api.local/api"

	got, err := resolveEndpoint(cfg)
	if err != nil {
		t.Fatalf("resolveEndpoint() error = %v", err)
	}
	if got != cfg.HTTP.Endpoint {
		t.Errorf("resolveEndpoint() = %v, want %v", got, cfg.HTTP.Endpoint)
	}
}
