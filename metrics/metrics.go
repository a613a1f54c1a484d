// Package metrics counts what the controller decides each tick with
// OpenTelemetry instruments.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const scope = "github.com/BenvolioDAT/BeeHiveMind-sub002"

// Config controls the in-process meter provider.
type Config struct {
	Enabled     bool          `yaml:"enabled"`
	LogInterval time.Duration `yaml:"log_interval"` // 0 disables the periodic summary
}

func DefaultConfig() Config {
	return Config{Enabled: true, LogInterval: time.Minute}
}

// Provider owns the meter provider and a manual reader used to pull
// totals for logging and tests.
type Provider struct {
	cfg    Config
	reader *sdkmetric.ManualReader
	mp     *sdkmetric.MeterProvider
}

func NewProvider(cfg Config) *Provider {
	reader := sdkmetric.NewManualReader()
	return &Provider{
		cfg:    cfg,
		reader: reader,
		mp:     sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// Recorder builds a Recorder on this provider's meter.
func (p *Provider) Recorder() (*Recorder, error) {
	return NewRecorder(p.mp.Meter(scope))
}

// Snapshot returns every counter's current total keyed by
// "name{attr=value,...}".
func (p *Provider) Snapshot(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name+"{"+dp.Attributes.Encoded(attribute.DefaultEncoder())+"}"] += dp.Value
			}
		}
	}
	return out, nil
}

// LogEvery writes a summary of all counters at the configured interval
// until ctx is done.
func (p *Provider) LogEvery(ctx context.Context) {
	if p.cfg.LogInterval <= 0 {
		return
	}
	t := time.NewTicker(p.cfg.LogInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap, err := p.Snapshot(ctx)
			if err != nil {
				slog.Warn("metrics snapshot failed", "error", err)
				continue
			}
			keys := make([]string, 0, len(snap))
			for k := range snap {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%s=%d", k, snap[k])
			}
			slog.Info("metrics", "counters", strings.Join(parts, " "))
		}
	}
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}

// Recorder satisfies the recorder interfaces of movement and intel, plus
// the agent's event hook.
type Recorder struct {
	decided   metric.Int64Counter
	resolved  metric.Int64Counter
	refreshed metric.Int64Counter
	events    metric.Int64Counter
}

func NewRecorder(meter metric.Meter) (*Recorder, error) {
	r := &Recorder{}
	var err error
	if r.decided, err = meter.Int64Counter("beehive.movement.requests",
		metric.WithDescription("Movement requests by verdict")); err != nil {
		return nil, fmt.Errorf("create requests counter: %w", err)
	}
	if r.resolved, err = meter.Int64Counter("beehive.movement.resolutions",
		metric.WithDescription("Resolved intents by reason")); err != nil {
		return nil, fmt.Errorf("create resolutions counter: %w", err)
	}
	if r.refreshed, err = meter.Int64Counter("beehive.intel.refreshes",
		metric.WithDescription("Threat intel lookups by refresh kind")); err != nil {
		return nil, fmt.Errorf("create refreshes counter: %w", err)
	}
	if r.events, err = meter.Int64Counter("beehive.agent.events",
		metric.WithDescription("Tick-to-tick events by kind")); err != nil {
		return nil, fmt.Errorf("create events counter: %w", err)
	}
	return r, nil
}

func (r *Recorder) IntentDecided(ctx context.Context, accepted bool) {
	r.decided.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", accepted)))
}

func (r *Recorder) IntentResolved(ctx context.Context, reason string) {
	r.resolved.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (r *Recorder) IntelRefreshed(ctx context.Context, kind string) {
	r.refreshed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (r *Recorder) EventDetected(ctx context.Context, kind string) {
	r.events.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
