package workers

import (
	"context"
	"log/slog"
	"time"
)

// Probe checks one dependency the gateway cannot serve without.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type ServingReporter interface {
	SetServing(serving bool)
}

// HealthMonitoringWorker runs every probe on each tick and reports the
// gateway as serving only while all of them pass.
type HealthMonitoringWorker struct {
	log      *slog.Logger
	reporter ServingReporter
	interval time.Duration
	timeout  time.Duration
	probes   []Probe
	serving  *bool
}

func NewHealthMonitoringWorker(
	log *slog.Logger,
	reporter ServingReporter,
	interval time.Duration,
	probes ...Probe,
) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:      log,
		reporter: reporter,
		interval: interval,
		timeout:  interval / 2,
		probes:   probes,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.check(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *HealthMonitoringWorker) check(ctx context.Context) {
	serving := true
	for _, p := range w.probes {
		probeCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err := p.Check(probeCtx)
		cancel()
		if err != nil {
			w.log.Warn("Health probe failed", "probe", p.Name, "error", err)
			serving = false
		}
	}
	if w.serving != nil && *w.serving == serving {
		return
	}
	w.serving = &serving
	w.reporter.SetServing(serving)
	w.log.Info("Serving status changed", "serving", serving)
}
