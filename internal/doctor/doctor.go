// Package doctor runs connectivity diagnostics against a studio server:
// REST liveness, websocket handshake, and STUN-based public-address
// discovery so an operator can tell whether a remote lab host is
// reachable directly or sits behind address translation.
package doctor

import (
	"context"
	"fmt"
	"time"

	"labctl/internal/api"
	"labctl/internal/config"
	"labctl/internal/stream"
)

// Check is one named diagnostic result.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Run executes all applicable checks for the given config. It never
// fails as a whole; individual checks report their own state.
func Run(ctx context.Context, cfg config.Config) []Check {
	checks := make([]Check, 0, 3)
	if cfg.Server == nil || cfg.Server.URL == "" {
		return append(checks, Check{Name: "config", Detail: "server.url is not set"})
	}

	checks = append(checks, checkHealth(ctx, cfg))
	checks = append(checks, checkStream(ctx, cfg))

	if len(cfg.Server.STUNServers) > 0 {
		checks = append(checks, checkSTUN(ctx, cfg.Server.STUNServers))
	}

	return checks
}

func checkHealth(ctx context.Context, cfg config.Config) Check {
	client := api.NewClient(cfg.Server.URL, cfg.Server.APIToken, cfg.Server.Timeout())
	resp, err := client.Health(ctx)
	if err != nil {
		return Check{Name: "api", Detail: err.Error()}
	}
	detail := resp.Status
	if resp.Version != "" {
		detail = fmt.Sprintf("%s (server %s)", resp.Status, resp.Version)
	}
	return Check{Name: "api", OK: resp.Status == "ok", Detail: detail}
}

func checkStream(ctx context.Context, cfg config.Config) Check {
	wsURL, err := stream.EventsURL(cfg.Server.URL, "")
	if err != nil {
		return Check{Name: "stream", Detail: err.Error()}
	}

	// A successful handshake is enough; cancel right after dialing.
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = stream.Probe(dialCtx, wsURL, cfg.Server.APIToken)
	if err != nil {
		return Check{Name: "stream", Detail: err.Error()}
	}
	return Check{Name: "stream", OK: true, Detail: wsURL}
}

func checkSTUN(ctx context.Context, servers []string) Check {
	addr, nat, err := DiscoverPublicAddr(ctx, servers, 5*time.Second)
	if err != nil {
		return Check{Name: "stun", Detail: err.Error()}
	}
	return Check{Name: "stun", OK: true, Detail: fmt.Sprintf("public_addr=%s nat=%s", addr, nat)}
}
