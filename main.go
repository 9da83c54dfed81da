package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rscampini/grafana-orgsync/config"
	"github.com/rscampini/grafana-orgsync/grafana"
	"github.com/rscampini/grafana-orgsync/internal/logger"
	"github.com/rscampini/grafana-orgsync/metrics"
	"github.com/rscampini/grafana-orgsync/reconcile"
	"github.com/rscampini/grafana-orgsync/state"
)

// report is the JSON document printed to stdout at the end of a run.
type report struct {
	Failed  bool   `json:"failed"`
	OrgID   int64  `json:"org_id"`
	OrgName string `json:"org_name"`
	Message string `json:"msg"`
	Changed bool   `json:"changed"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	orgName := flag.String("name", "", "organization name, case sensitive")
	desiredState := flag.String("state", "present", "desired state, present or absent")
	dryRun := flag.Bool("dry-run", false, "report the would-be outcome without mutating anything")
	history := flag.Bool("history", false, "print recorded runs from the journal and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Env)

	m := metrics.New(true)

	journal, err := state.New(cfg.Journal.Path, m)
	if err != nil {
		slog.Error("Failed to open run journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	ctx := context.Background()

	if *history {
		if err := printHistory(ctx, journal); err != nil {
			slog.Error("Failed to read run journal", "error", err)
			os.Exit(1)
		}
		return
	}

	var present bool
	switch *desiredState {
	case "present":
		present = true
	case "absent":
		present = false
	default:
		slog.Error("Invalid state, want present or absent", "state", *desiredState)
		os.Exit(1)
	}
	if *orgName == "" {
		slog.Error("Organization name is required")
		os.Exit(1)
	}
	if cfg.Grafana.URL == "" {
		slog.Error("Grafana URL is required")
		os.Exit(1)
	}

	client := grafana.New(cfg.Grafana.URL, cfg.Grafana.Username, cfg.Grafana.Password, m)
	engine := reconcile.NewEngine(client, m)

	desired := reconcile.Desired{
		Name:    *orgName,
		Present: present,
		DryRun:  *dryRun,
	}

	slog.Info("Reconciling organization", "name", desired.Name, "present", desired.Present, "dry_run", desired.DryRun)
	start := time.Now()
	result, err := engine.Reconcile(ctx, desired)
	m.SetRunDuration(time.Since(start))

	if err != nil {
		m.IncRun(false)
		writeMetrics(m, cfg.Metrics.Textfile)
		printReport(report{Failed: true, OrgID: grafana.NotFound, OrgName: desired.Name, Message: fmt.Sprintf("error : %s", err)})
		os.Exit(1)
	}
	m.IncRun(true)

	entry := state.Entry{
		Name:      result.OrgName,
		Action:    result.Action,
		OrgID:     result.OrgID,
		Message:   result.Message,
		Changed:   result.Changed,
		Timestamp: time.Now().UnixNano(),
	}
	if err := journal.Append(ctx, entry); err != nil {
		slog.Warn("Failed to record run in journal", "error", err)
	}
	writeMetrics(m, cfg.Metrics.Textfile)

	printReport(report{
		Failed:  false,
		OrgID:   result.OrgID,
		OrgName: result.OrgName,
		Message: result.Message,
		Changed: result.Changed,
	})
}

func printReport(r report) {
	if err := json.NewEncoder(os.Stdout).Encode(r); err != nil {
		slog.Error("Failed to write report", "error", err)
	}
}

func printHistory(ctx context.Context, journal state.Journal) error {
	entries, err := journal.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(m *metrics.Metrics, path string) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		slog.Warn("Failed to write metrics textfile", "path", path, "error", err)
	}
}
