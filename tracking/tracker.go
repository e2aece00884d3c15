package tracking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theoremus-urban-solutions/ais-shipdomain/ais"
	"github.com/theoremus-urban-solutions/ais-shipdomain/geo"
	"github.com/theoremus-urban-solutions/ais-shipdomain/palette"
	"github.com/theoremus-urban-solutions/ais-shipdomain/registry"
	"github.com/theoremus-urban-solutions/ais-shipdomain/shipdomain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Report outcomes passed to Recorder.ReportHandled.
const (
	OutcomeParseError = "parse_error"
	OutcomeFiltered   = "filtered"
	OutcomeAdmitted   = "admitted"
)

// degenerateKinds labels each recovery the engine can apply.
var degenerateKinds = []struct {
	flag shipdomain.Degenerate
	kind string
}{
	{shipdomain.SpeedFloored, "speed"},
	{shipdomain.LengthDefaulted, "length"},
	{shipdomain.SpeedClamped, "speed_clamped"},
	{shipdomain.LengthClamped, "length_clamped"},
	{shipdomain.Unprojectable, "unprojectable"},
}

const tracerName = "github.com/theoremus-urban-solutions/ais-shipdomain/tracking"

// Source yields raw report lines. Next blocks until a line is available, the
// stream ends (io.EOF) or ctx is done.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// Publisher receives every snapshot right after it is built.
type Publisher interface {
	Publish(*Snapshot)
}

// Recorder receives pipeline counters. observability.Collector implements it.
type Recorder interface {
	ReportHandled(outcome string)
	VesselEvicted()
	DegenerateInput(kind string)
	SetVessels(n int)
	ObserveDomain(d time.Duration)
}

// Options configures a Tracker. Zero values select defaults.
type Options struct {
	Registry  *registry.Registry
	Engine    *shipdomain.Engine
	Palette   *palette.Assigner
	Recorder  Recorder
	Publisher Publisher
	Logger    *slog.Logger
	Now       func() time.Time
}

// derived is what the tracker keeps next to each registry state.
type derived struct {
	heading float64
	domain  shipdomain.Domain
}

// Tracker drives Parse, Admit, ColorFor and ComputeDomain for each line and
// publishes an immutable Snapshot after every admitted report. Handle
// serializes its callers; Latest may be called from any goroutine.
type Tracker struct {
	mu sync.Mutex

	reg      *registry.Registry
	engine   *shipdomain.Engine
	colors   *palette.Assigner
	recorder Recorder
	pub      Publisher
	log      *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	domains map[string]derived
	seq     uint64
	latest  atomic.Pointer[Snapshot]
}

// New returns a tracker with an empty published snapshot.
func New(opts Options) *Tracker {
	t := &Tracker{
		reg:      opts.Registry,
		engine:   opts.Engine,
		colors:   opts.Palette,
		recorder: opts.Recorder,
		pub:      opts.Publisher,
		log:      opts.Logger,
		now:      opts.Now,
		domains:  map[string]derived{},
		tracer:   otel.Tracer(tracerName),
	}
	if t.reg == nil {
		t.reg = registry.New(registry.DefaultBounds, registry.DefaultMaxVessels)
	}
	if t.engine == nil {
		t.engine = shipdomain.NewEngine(shipdomain.DefaultSamplesPerQuadrant, 0, shipdomain.DefaultLength)
	}
	if t.colors == nil {
		t.colors = palette.NewAssigner(nil)
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	if t.now == nil {
		t.now = time.Now
	}
	t.latest.Store(&Snapshot{PublishedAt: t.now()})
	return t
}

// Latest returns the most recently published snapshot. It is never nil.
func (t *Tracker) Latest() *Snapshot {
	return t.latest.Load()
}

// Handle runs one raw line through the pipeline. Parse failures are returned
// wrapping ais.ErrParse; reports outside the admission box return a Result
// with Admitted false and no error.
func (t *Tracker) Handle(ctx context.Context, line string) (registry.Result, error) {
	ctx, span := t.tracer.Start(ctx, "ais.report")
	defer span.End()

	r, err := ais.ParseLine(line)
	if err != nil {
		t.record(OutcomeParseError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failure")
		return registry.Result{}, err
	}
	span.SetAttributes(attribute.String("ais.mmsi", r.MMSI))

	t.mu.Lock()
	defer t.mu.Unlock()

	res := t.reg.Admit(r)
	if !res.Admitted {
		t.record(OutcomeFiltered)
		span.SetAttributes(attribute.String("ais.outcome", OutcomeFiltered))
		return res, nil
	}
	t.record(OutcomeAdmitted)
	span.SetAttributes(
		attribute.String("ais.outcome", OutcomeAdmitted),
		attribute.Bool("ais.new", res.New),
	)

	if res.Evicted != "" {
		delete(t.domains, res.Evicted)
		if t.recorder != nil {
			t.recorder.VesselEvicted()
		}
		t.log.Debug("vessel evicted", "mmsi", res.Evicted)
	}

	t.colors.ColorFor(r.MMSI)
	t.domains[r.MMSI] = t.compute(ctx, r)
	t.publish()
	return res, nil
}

func (t *Tracker) compute(ctx context.Context, r ais.Report) derived {
	_, span := t.tracer.Start(ctx, "shipdomain.compute")
	defer span.End()

	heading := r.DisplayHeading()
	start := time.Now()
	d := t.engine.Compute(r.Length, r.SOG, geo.DegToRad(heading), geo.Point{Lon: r.Lon, Lat: r.Lat})
	if t.recorder != nil {
		t.recorder.ObserveDomain(time.Since(start))
	}

	for _, k := range degenerateKinds {
		if d.Degenerate.Has(k.flag) {
			t.degenerate(k.kind, r)
		}
	}
	span.SetAttributes(
		attribute.Float64("shipdomain.radius_max_m", d.Radii.Max()),
		attribute.Int("shipdomain.points", len(d.Ring)),
	)
	return derived{heading: heading, domain: d}
}

func (t *Tracker) degenerate(kind string, r ais.Report) {
	if t.recorder != nil {
		t.recorder.DegenerateInput(kind)
	}
	t.log.Debug("degenerate domain input", "kind", kind, "mmsi", r.MMSI, "sog", r.SOG, "length", r.Length)
}

func (t *Tracker) record(outcome string) {
	if t.recorder != nil {
		t.recorder.ReportHandled(outcome)
	}
}

// publish assembles a fresh snapshot from the registry and the cached
// domains. Rings are shared with earlier snapshots and never mutated.
func (t *Tracker) publish() {
	vessels := make([]Vessel, 0, t.reg.Len())
	t.reg.Each(func(st registry.State) {
		id := st.Report.MMSI
		c := t.colors.ColorFor(id)
		d := t.domains[id]
		vessels = append(vessels, Vessel{
			Report:  st.Report,
			Updates: st.Updates,
			Heading: d.heading,
			Color:   c,
			Fill:    c.Fill(),
			Border:  c.Border(),
			Domain:  d.domain,
		})
	})

	t.seq++
	snap := &Snapshot{Seq: t.seq, PublishedAt: t.now(), Vessels: vessels}
	t.latest.Store(snap)
	if t.recorder != nil {
		t.recorder.SetVessels(len(vessels))
	}
	if t.pub != nil {
		t.pub.Publish(snap)
	}
}

// Run reads src until it ends or fails. Malformed lines are logged and
// skipped. io.EOF ends Run without error; any other stream failure is
// returned. The last snapshot stays published either way.
func (t *Tracker) Run(ctx context.Context, src Source) error {
	for {
		line, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.log.Info("report stream ended", "seq", t.Latest().Seq)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("tracking: read stream: %w", err)
		}
		if _, err := t.Handle(ctx, line); err != nil {
			t.log.Warn("discarded report", "error", err)
		}
	}
}
