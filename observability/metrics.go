package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of the tracking pipeline. A nil
// *Collector is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Reports        *prometheus.CounterVec
	Evictions      prometheus.Counter
	Degenerate     *prometheus.CounterVec
	Vessels        prometheus.Gauge
	Subscribers    prometheus.Gauge
	DomainDuration prometheus.Histogram
}

// NewCollector registers the pipeline metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry returns the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	reports, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipdomain_reports_total",
		Help: "Stream lines handled, labeled by outcome (parse_error, filtered, admitted).",
	}, []string{"outcome"}), "shipdomain_reports_total")
	if err != nil {
		return nil, err
	}
	evictions, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shipdomain_evictions_total",
		Help: "Vessels evicted from the registry to stay under the population cap.",
	}), "shipdomain_evictions_total")
	if err != nil {
		return nil, err
	}
	degenerate, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipdomain_degenerate_inputs_total",
		Help: "Domain computations that substituted a floor, default or cap, labeled by kind.",
	}, []string{"kind"}), "shipdomain_degenerate_inputs_total")
	if err != nil {
		return nil, err
	}
	vessels, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shipdomain_vessels",
		Help: "Current number of tracked vessels.",
	}), "shipdomain_vessels")
	if err != nil {
		return nil, err
	}
	subscribers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shipdomain_ws_subscribers",
		Help: "Current number of websocket push subscribers.",
	}), "shipdomain_ws_subscribers")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shipdomain_domain_compute_seconds",
		Help:    "Time spent computing one ship domain polygon.",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01},
	}), "shipdomain_domain_compute_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Reports:        reports,
		Evictions:      evictions,
		Degenerate:     degenerate,
		Vessels:        vessels,
		Subscribers:    subscribers,
		DomainDuration: duration,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ReportHandled counts one stream line by outcome.
func (c *Collector) ReportHandled(outcome string) {
	if c == nil {
		return
	}
	c.Reports.WithLabelValues(outcome).Inc()
}

// VesselEvicted counts one eviction.
func (c *Collector) VesselEvicted() {
	if c == nil {
		return
	}
	c.Evictions.Inc()
}

// DegenerateInput counts one floor or default substitution.
func (c *Collector) DegenerateInput(kind string) {
	if c == nil {
		return
	}
	c.Degenerate.WithLabelValues(kind).Inc()
}

// SetVessels sets the tracked vessel gauge.
func (c *Collector) SetVessels(n int) {
	if c == nil {
		return
	}
	c.Vessels.Set(float64(n))
}

// SetSubscribers sets the websocket subscriber gauge.
func (c *Collector) SetSubscribers(n int) {
	if c == nil {
		return
	}
	c.Subscribers.Set(float64(n))
}

// ObserveDomain records the duration of one domain computation.
func (c *Collector) ObserveDomain(d time.Duration) {
	if c == nil {
		return
	}
	c.DomainDuration.Observe(d.Seconds())
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
