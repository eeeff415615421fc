// Package watch runs the live lab session loop: an initial bulk fetch
// over REST, then the event stream, with each incoming record applied
// to the projector synchronously.
package watch

import (
	"context"
	"errors"
	"log"
	"time"

	"labctl/internal/api"
	"labctl/internal/config"
	"labctl/internal/metrics"
	"labctl/internal/model"
	"labctl/internal/runtime"
	"labctl/internal/store"
	"labctl/internal/stream"
)

// Hooks are optional rendering callbacks. They run on the ingest
// goroutine after the projector has been updated.
type Hooks struct {
	OnSnapshot func()
	OnUpdate   func(rec runtime.Record)
}

// Run watches a lab until the context is cancelled, reconnecting with a
// doubling, capped delay when the stream drops. The delay returns to its
// base after any cycle that reached the server. The latest records are
// persisted to the session cache on snapshots and on shutdown.
func Run(ctx context.Context, cfg config.Config, proj *runtime.Projector, hooks Hooks) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if cfg.Watch == nil || cfg.Watch.Lab == "" {
		return errors.New("watch.lab is required")
	}

	baseDelay := time.Duration(cfg.Watch.ReconnectDelaySec) * time.Second
	maxDelay := time.Duration(cfg.Watch.ReconnectMaxDelaySec) * time.Second
	delay := baseDelay

	for {
		connected, err := runOnce(ctx, cfg, proj, hooks)
		if ctx.Err() != nil {
			saveCache(cfg, proj)
			return ctx.Err()
		}
		if connected {
			delay = baseDelay
		}
		log.Printf("watch: stream ended: %v (reconnect in %s)", err, delay)

		select {
		case <-ctx.Done():
			saveCache(cfg, proj)
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = delay * 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// runOnce performs one fetch+subscribe cycle and returns the error that
// ended the stream. The bool reports whether the cycle reached the
// server at all, so the caller can reset its reconnect delay.
func runOnce(ctx context.Context, cfg config.Config, proj *runtime.Projector, hooks Hooks) (bool, error) {
	client := api.NewClient(cfg.Server.URL, cfg.Server.APIToken, cfg.Server.Timeout())
	labID := cfg.Watch.Lab

	resp, err := client.Nodes(ctx, labID)
	if err != nil {
		return false, err
	}
	ingestAll(proj, resp.Nodes)
	saveCache(cfg, proj)
	if hooks.OnSnapshot != nil {
		hooks.OnSnapshot()
	}

	wsURL, err := stream.EventsURL(cfg.Server.URL, labID)
	if err != nil {
		return true, err
	}

	return true, stream.Subscribe(ctx, wsURL, cfg.Server.APIToken, stream.Events{
		NodeSnapshot: func(_ string, nodes []api.NodeState) {
			ingestAll(proj, nodes)
			saveCache(cfg, proj)
			if hooks.OnSnapshot != nil {
				hooks.OnSnapshot()
			}
		},
		NodeState: func(_ string, node api.NodeState) {
			rec := ToRecord(node, time.Now().UTC())
			proj.Ingest(rec)
			if hooks.OnUpdate != nil {
				hooks.OnUpdate(rec)
			}
		},
		HostMetrics: func(hosts []api.HostMetric) {
			recordHostMetrics(cfg, hosts)
		},
	})
}

// ToRecord converts a wire node-state record into a projector record.
func ToRecord(n api.NodeState, now time.Time) runtime.Record {
	return runtime.Record{
		NodeID:           n.NodeID,
		Name:             n.NodeName,
		DesiredState:     runtime.DesiredState(n.DesiredState),
		ActualState:      runtime.ActualState(n.ActualState),
		Hint:             runtime.DisplayHint(n.DisplayState),
		Ready:            n.IsReady,
		WillRetry:        n.WillRetry,
		ErrorMessage:     n.ErrorMessage,
		ImageSyncStatus:  n.ImageSyncStatus,
		ImageSyncMessage: n.ImageSyncMessage,
		UpdatedAt:        now,
	}
}

// ToHostMetric converts a wire host sample, stamping samples the server
// sent without a timestamp.
func ToHostMetric(h api.HostMetric, now time.Time) model.HostMetric {
	ts := h.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return model.HostMetric{
		Timestamp: ts,
		HostID:    h.HostID,
		CPUPct:    h.CPUPct,
		MemoryPct: h.MemoryPct,
		DiskPct:   h.DiskPct,
		LabCount:  h.LabCount,
		NodeCount: h.NodeCount,
	}
}

func ingestAll(proj *runtime.Projector, nodes []api.NodeState) {
	now := time.Now().UTC()
	for _, n := range nodes {
		proj.Ingest(ToRecord(n, now))
	}
}

func recordHostMetrics(cfg config.Config, hosts []api.HostMetric) {
	if cfg.Watch.MetricsPath == "" || len(hosts) == 0 {
		return
	}
	now := time.Now().UTC()
	samples := make([]model.HostMetric, 0, len(hosts))
	for _, h := range hosts {
		samples = append(samples, ToHostMetric(h, now))
	}
	if err := metrics.AppendCSV(cfg.Watch.MetricsPath, samples); err != nil {
		log.Printf("watch: append metrics failed: %v", err)
	}
}

func saveCache(cfg config.Config, proj *runtime.Projector) {
	if cfg.Watch.CachePath == "" {
		return
	}
	cache := store.FromRecords(cfg.Watch.Lab, proj.Snapshot())
	if err := store.SaveCache(cfg.Watch.CachePath, cache); err != nil {
		log.Printf("watch: save cache failed: %v", err)
	}
}
