package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rscampini/grafana-orgsync/grafana"
	"github.com/rscampini/grafana-orgsync/metrics"
)

const (
	msgExists       = "Organization exists"
	msgAlreadyThere = "Organization already exists"
	msgNotThere     = "Organization does not exists"
	msgCheckCreate  = "Running in check mode...Organization will be created. Organization ID will be defined at creation"
	msgCheckDelete  = "Running in check mode...Organization will be deleted."
)

type Engine interface {
	Reconcile(ctx context.Context, desired Desired) (Result, error)
}

type engine struct {
	orgs    grafana.Client
	metrics *metrics.Metrics
}

func NewEngine(orgs grafana.Client, metrics *metrics.Metrics) *engine {
	return &engine{
		orgs:    orgs,
		metrics: metrics,
	}
}

// Reconcile performs one observe-decide-act cycle against the named
// organization. It issues exactly one lookup and at most one mutation; in
// dry-run mode no mutation is issued and the reported ID and name are the
// observed, pre-change values.
func (e *engine) Reconcile(ctx context.Context, desired Desired) (Result, error) {
	observed, err := e.orgs.Lookup(ctx, desired.Name)
	if err != nil {
		return Result{}, fmt.Errorf("lookup organization: %w", err)
	}
	slog.Debug("Observed organization", "name", desired.Name, "id", observed.ID, "status", observed.Status)

	if desired.Present {
		return e.ensurePresent(ctx, desired, observed)
	}
	return e.ensureAbsent(ctx, desired, observed)
}

func (e *engine) ensurePresent(ctx context.Context, desired Desired, observed grafana.Org) (Result, error) {
	if observed.Exists() {
		slog.Info("Organization already present, nothing to do", "name", observed.Name, "id", observed.ID)
		e.metrics.IncOrgAction(ActionNone)
		msg := msgExists
		if desired.DryRun {
			msg = msgAlreadyThere
		}
		return Result{
			OrgID:   observed.ID,
			OrgName: observed.Name,
			Message: msg,
			Changed: false,
			Action:  ActionNone,
		}, nil
	}

	if desired.DryRun {
		slog.Info("Dry run mode - would create organization", "name", desired.Name)
		e.metrics.IncOrgAction(ActionCreate)
		return Result{
			OrgID:   observed.ID,
			OrgName: observed.Name,
			Message: msgCheckCreate,
			Changed: true,
			Action:  ActionCreate,
		}, nil
	}

	created, err := e.orgs.Create(ctx, desired.Name)
	if err != nil {
		return Result{}, fmt.Errorf("create organization: %w", err)
	}
	slog.Info("Created organization", "name", created.Name, "id", created.ID, "status", created.Status)
	e.metrics.IncOrgAction(ActionCreate)
	return Result{
		OrgID:   created.ID,
		OrgName: created.Name,
		Message: created.Message,
		Changed: true,
		Action:  ActionCreate,
	}, nil
}

func (e *engine) ensureAbsent(ctx context.Context, desired Desired, observed grafana.Org) (Result, error) {
	if !observed.Exists() {
		slog.Info("Organization already absent, nothing to do", "name", desired.Name)
		e.metrics.IncOrgAction(ActionNone)
		return Result{
			OrgID:   observed.ID,
			OrgName: observed.Name,
			Message: msgNotThere,
			Changed: false,
			Action:  ActionNone,
		}, nil
	}

	if desired.DryRun {
		slog.Info("Dry run mode - would delete organization", "name", observed.Name, "id", observed.ID)
		e.metrics.IncOrgAction(ActionDelete)
		return Result{
			OrgID:   observed.ID,
			OrgName: observed.Name,
			Message: msgCheckDelete,
			Changed: true,
			Action:  ActionDelete,
		}, nil
	}

	deleted, err := e.orgs.Delete(ctx, desired.Name, observed.ID)
	if err != nil {
		return Result{}, fmt.Errorf("delete organization: %w", err)
	}
	slog.Info("Deleted organization", "name", deleted.Name, "id", observed.ID, "status", deleted.Status)
	e.metrics.IncOrgAction(ActionDelete)
	// The result keeps the observed ID even when the delete itself reported
	// failure; callers detect that case through the message.
	return Result{
		OrgID:   observed.ID,
		OrgName: deleted.Name,
		Message: deleted.Message,
		Changed: true,
		Action:  ActionDelete,
	}, nil
}
