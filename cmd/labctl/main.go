package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"labctl/internal/api"
	"labctl/internal/config"
	"labctl/internal/doctor"
	"labctl/internal/metrics"
	"labctl/internal/model"
	"labctl/internal/runtime"
	"labctl/internal/store"
	"labctl/internal/ui"
	"labctl/internal/watch"
)

const usage = `labctl - terminal client for the lab topology studio

Usage:
  labctl labs --config <path>
  labctl nodes --config <path> [--lab <id>]
  labctl watch --config <path> [--lab <id>]
  labctl status --config <path>
  labctl hosts --config <path>
  labctl stats --config <path> [--window 15m]
  labctl export csv --config <path> --out <file>
  labctl doctor --config <path>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "-h", "--help", "help":
		fmt.Print(usage)
	case "labs":
		handleLabs(os.Args[2:])
	case "nodes":
		handleNodes(os.Args[2:])
	case "watch":
		handleWatch(os.Args[2:])
	case "status":
		handleStatus(os.Args[2:])
	case "hosts":
		handleHosts(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "export":
		handleExport(os.Args[2:])
	case "doctor":
		handleDoctor(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func handleLabs(args []string) {
	fs := flag.NewFlagSet("labs", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	_ = fs.Parse(args)

	cfg := mustLoadConfig(*configPath)
	client := api.NewClient(normalizeBaseURL(cfg.Server.URL), cfg.Server.APIToken, cfg.Server.Timeout())

	resp, err := client.Labs(context.Background())
	if err != nil {
		fatal(err)
	}
	if len(resp.Labs) == 0 {
		fmt.Fprintln(os.Stdout, "no labs")
		return
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-20s  %-12s  %-6s  %-20s\n", "ID", "NAME", "OWNER", "NODES", "CREATED")
	for _, lab := range resp.Labs {
		created := ""
		if !lab.CreatedAt.IsZero() {
			created = lab.CreatedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-20s  %-12s  %-6d  %-20s\n", lab.ID, lab.Name, lab.Owner, lab.NodeCount, created)
	}
}

func handleNodes(args []string) {
	fs := flag.NewFlagSet("nodes", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	lab := fs.String("lab", "", "lab ID override")
	_ = fs.Parse(args)

	cfg := mustLoadConfig(*configPath)
	labID := selectLab(cfg, *lab)
	client := api.NewClient(normalizeBaseURL(cfg.Server.URL), cfg.Server.APIToken, cfg.Server.Timeout())

	resp, err := client.Nodes(context.Background(), labID)
	if err != nil {
		fatal(err)
	}

	proj := runtime.NewProjector()
	now := time.Now().UTC()
	for _, n := range resp.Nodes {
		proj.Ingest(watch.ToRecord(n, now))
	}

	printNodeTable(proj.Snapshot())

	if cfg.Watch != nil && cfg.Watch.CachePath != "" {
		cache := store.FromRecords(labID, proj.Snapshot())
		if err := store.SaveCache(cfg.Watch.CachePath, cache); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save cache: %v\n", err)
		}
	}
}

func handleWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	lab := fs.String("lab", "", "lab ID override")
	_ = fs.Parse(args)

	cfg := mustLoadConfig(*configPath)
	if cfg.Watch == nil {
		cfg.Watch = &config.WatchConfig{}
		config.ApplyDefaults(&cfg)
	}
	if *lab != "" {
		cfg.Watch.Lab = *lab
	}
	if cfg.Watch.Lab == "" {
		fatal(errors.New("--lab or watch.lab is required"))
	}

	ctx, cancel := signalContext()
	defer cancel()

	proj := runtime.NewProjector()
	hooks := watch.Hooks{
		OnSnapshot: func() {
			printNodeTable(proj.Snapshot())
		},
		OnUpdate: func(rec runtime.Record) {
			fmt.Fprintf(os.Stdout, "%s  %-16s  %s  actual=%s desired=%s%s\n",
				rec.UpdatedAt.Format("15:04:05"), rec.Name, ui.Status(rec.Status(), 8),
				rec.ActualState, rec.DesiredState, updateDetail(rec))
		},
	}

	if err := watch.Run(ctx, cfg, proj, hooks); err != nil && !errors.Is(err, context.Canceled) {
		fatal(err)
	}
}

func handleStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if cfg.Watch == nil || cfg.Watch.CachePath == "" {
		fatal(errors.New("watch.cache_path is required"))
	}

	cache, err := store.LoadCache(cfg.Watch.CachePath)
	if err != nil {
		fatal(err)
	}
	if len(cache.Nodes) == 0 {
		fmt.Fprintln(os.Stdout, "no cached session (run labctl nodes or labctl watch first)")
		return
	}

	age := ""
	if !cache.UpdatedAt.IsZero() {
		age = fmt.Sprintf(" (as of %s)", cache.UpdatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(os.Stdout, "lab %s%s\n", cache.LabID, age)

	proj := runtime.NewProjector()
	proj.IngestAll(cache.Records())
	printNodeTable(proj.Snapshot())
}

func handleHosts(args []string) {
	fs := flag.NewFlagSet("hosts", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	_ = fs.Parse(args)

	cfg := mustLoadConfig(*configPath)
	client := api.NewClient(normalizeBaseURL(cfg.Server.URL), cfg.Server.APIToken, cfg.Server.Timeout())

	resp, err := client.Hosts(context.Background())
	if err != nil {
		fatal(err)
	}
	if len(resp.Hosts) == 0 {
		fmt.Fprintln(os.Stdout, "no hosts")
		return
	}

	now := time.Now().UTC()
	samples := make([]model.HostMetric, 0, len(resp.Hosts))
	for _, h := range resp.Hosts {
		samples = append(samples, watch.ToHostMetric(h, now))
	}

	fmt.Fprintf(os.Stdout, "%-16s  %-8s  %-8s  %-8s  %-6s  %-6s\n", "HOST", "CPU", "MEMORY", "DISK", "LABS", "NODES")
	for _, m := range samples {
		fmt.Fprintf(os.Stdout, "%-16s  %s  %s  %s  %-6d  %-6d\n",
			m.HostID, ui.Percent(m.CPUPct, 8), ui.Percent(m.MemoryPct, 8), ui.Percent(m.DiskPct, 8),
			m.LabCount, m.NodeCount)
	}

	agg := metrics.AggregateHosts(samples)
	fmt.Fprintf(os.Stdout, "hosts=%d labs=%d nodes=%d cpu avg=%.1f%% max=%.1f%% mem avg=%.1f%% max=%.1f%%\n",
		agg.Hosts, agg.Labs, agg.Nodes, agg.AvgCPUPct, agg.MaxCPUPct, agg.AvgMemoryPct, agg.MaxMemoryPct)
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	window := fs.Duration("window", config.DefaultStatsWindow, "time window")
	path := fs.String("path", "", "metrics CSV path override")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}

	metricsPath := selectMetricsPath(cfg, *path)
	if metricsPath == "" {
		fatal(errors.New("metrics path required"))
	}

	items, err := metrics.ReadCSV(metricsPath)
	if err != nil {
		fatal(err)
	}

	cutoff := time.Now().UTC().Add(-*window)
	summary := metrics.Summarize(items, cutoff)
	if summary.Count == 0 {
		fmt.Fprintln(os.Stdout, "no samples in window")
		return
	}

	fmt.Fprintf(os.Stdout, "samples=%d from=%s to=%s\n", summary.Count, summary.From.Format(time.RFC3339), summary.To.Format(time.RFC3339))
	fmt.Fprintf(os.Stdout, "cpu avg=%.1f%% p95=%.1f%% min=%.1f%% max=%.1f%%\n", summary.AvgCPUPct, summary.P95CPUPct, summary.MinCPUPct, summary.MaxCPUPct)
	fmt.Fprintf(os.Stdout, "memory avg=%.1f%% disk avg=%.1f%%\n", summary.AvgMemoryPct, summary.AvgDiskPct)
}

func handleExport(args []string) {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, "export subcommand required\n")
		os.Exit(2)
	}
	if args[0] != "csv" {
		fmt.Fprintf(os.Stderr, "unknown export format %q\n", args[0])
		os.Exit(2)
	}

	fs := flag.NewFlagSet("export csv", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	out := fs.String("out", "", "output file")
	path := fs.String("path", "", "metrics CSV path override")
	_ = fs.Parse(args[1:])

	if *out == "" {
		fatal(errors.New("--out is required"))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}

	metricsPath := selectMetricsPath(cfg, *path)
	if metricsPath == "" {
		fatal(errors.New("metrics path required"))
	}

	if err := copyFile(metricsPath, *out); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stdout, "exported %s\n", *out)
}

func handleDoctor(args []string) {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if cfg.Server != nil {
		cfg.Server.URL = normalizeBaseURL(cfg.Server.URL)
	}

	failed := false
	for _, check := range doctor.Run(context.Background(), cfg) {
		mark := ui.SuccessStyle.Render("ok")
		if !check.OK {
			mark = ui.ErrorStyle.Render("fail")
			failed = true
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-4s  %s\n", check.Name, mark, check.Detail)
	}
	if failed {
		os.Exit(1)
	}
}

func printNodeTable(recs []runtime.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(os.Stdout, "no nodes")
		return
	}

	fmt.Fprintf(os.Stdout, "%-16s  %-10s  %-12s  %-8s  %-5s  %-10s  %s\n",
		"NAME", "STATUS", "ACTUAL", "DESIRED", "READY", "SYNC", "MESSAGE")
	for _, rec := range recs {
		name := rec.Name
		if name == "" {
			name = rec.NodeID
		}
		msg := rec.ErrorMessage
		if msg == "" {
			msg = rec.ImageSyncMessage
		}
		fmt.Fprintf(os.Stdout, "%-16s  %s  %-12s  %-8s  %s  %-10s  %s\n",
			name, ui.Status(rec.Status(), 10), rec.ActualState, rec.DesiredState,
			ui.Ready(rec.Ready), rec.ImageSyncStatus, msg)
	}
}

func updateDetail(rec runtime.Record) string {
	parts := make([]string, 0, 2)
	if rec.ImageSyncStatus != "" {
		parts = append(parts, "sync="+rec.ImageSyncStatus)
	}
	if rec.ErrorMessage != "" {
		parts = append(parts, "error="+rec.ErrorMessage)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func mustLoadConfig(path string) config.Config {
	if path == "" {
		fatal(errors.New("--config is required"))
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	if err := config.Validate(cfg); err != nil {
		fatal(err)
	}
	cfg.Server.URL = normalizeBaseURL(cfg.Server.URL)
	return cfg
}

func selectLab(cfg config.Config, override string) string {
	if override != "" {
		return override
	}
	if cfg.Watch != nil {
		return cfg.Watch.Lab
	}
	return ""
}

func selectMetricsPath(cfg config.Config, override string) string {
	if override != "" {
		return override
	}
	if cfg.Watch != nil {
		return cfg.Watch.MetricsPath
	}
	return ""
}

func normalizeBaseURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()
	return ctx, cancel
}

func fatal(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
