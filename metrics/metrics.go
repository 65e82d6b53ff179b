package metrics

import (
	"errors"
	"regexp"

	httpmock "github.com/tarmac-project/httpmock"
	proto "github.com/tarmac-project/protobuf-go/sdk/metrics"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	capabilityName = "metrics"
	fnCounter      = "counter"
	fnGauge        = "gauge"
	fnHistogram    = "histogram"
	actionInc      = "inc"
	actionDec      = "dec"

	// DefaultPrefix starts every metric name when Config.Prefix is empty.
	DefaultPrefix = "httpmock"
)

var (
	// ErrInvalidMetricName indicates a metric name that does not match the supported format.
	ErrInvalidMetricName = errors.New("metric name is invalid")

	isMetricNameValid = regexp.MustCompile(`^[a-zA-Z0-9_:][a-zA-Z0-9_:]*$`)
)

// Outcome names the way a request was answered, or why it was not.
type Outcome string

const (
	OutcomeWildcard     Outcome = "wildcard"
	OutcomeRegistered   Outcome = "registered"
	OutcomeFallback     Outcome = "fallback"
	OutcomeQueueEmpty   Outcome = "queue_empty"
	OutcomeMissed       Outcome = "missed"
	OutcomeRequestLimit Outcome = "request_limit"
	OutcomeTotalLimit   Outcome = "total_request_limit"
)

// Outcomes lists every Outcome in a stable order.
var Outcomes = []Outcome{
	OutcomeWildcard,
	OutcomeRegistered,
	OutcomeFallback,
	OutcomeQueueEmpty,
	OutcomeMissed,
	OutcomeRequestLimit,
	OutcomeTotalLimit,
}

// Recorder receives dispatch events from the mock client.
type Recorder interface {
	// Dispatched records the outcome of one request. count is the per-key
	// dispatch count for served exchanges and zero otherwise.
	Dispatched(outcome Outcome, count int)

	// WildcardQueued records a wildcard response added to the queue.
	WildcardQueued()

	// WildcardServed records a wildcard response taken from the queue.
	WildcardServed()
}

// HostCall defines the waPC host function signature used by metrics operations.
type HostCall func(string, string, string, []byte) ([]byte, error)

// Config controls how a HostRecorder interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig httpmock.RuntimeConfig

	// HostCall overrides the waPC host function used for metrics operations.
	HostCall HostCall

	// Prefix starts every metric name. Defaults to DefaultPrefix.
	Prefix string
}

// HostRecorder is a Recorder backed by host metrics.
type HostRecorder struct {
	outcomes map[Outcome]*Counter
	pending  *Gauge
	hits     *Histogram
}

// Ensure HostRecorder satisfies the Recorder interface at compile time.
var _ Recorder = (*HostRecorder)(nil)

// Counter is a named counter metric handle.
type Counter struct {
	name string
	host *hostSink
}

// Gauge is a named gauge metric handle.
type Gauge struct {
	name string
	host *hostSink
}

// Histogram is a named histogram metric handle.
type Histogram struct {
	name string
	host *hostSink
}

type hostSink struct {
	namespace string
	hostCall  HostCall
}

// New creates a HostRecorder, registering one counter per Outcome plus the
// pending-wildcards gauge and the key-hits histogram.
func New(config Config) (*HostRecorder, error) {
	host := &hostSink{
		namespace: config.SDKConfig.WithDefaults().Namespace,
		hostCall:  config.HostCall,
	}
	if host.hostCall == nil {
		host.hostCall = wapc.HostCall
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	r := &HostRecorder{outcomes: make(map[Outcome]*Counter, len(Outcomes))}
	for _, o := range Outcomes {
		c, err := newCounter(host, prefix+"_dispatch_"+string(o)+"_total")
		if err != nil {
			return nil, err
		}
		r.outcomes[o] = c
	}

	var err error
	if r.pending, err = newGauge(host, prefix+"_wildcards_pending"); err != nil {
		return nil, err
	}
	if r.hits, err = newHistogram(host, prefix+"_key_hits"); err != nil {
		return nil, err
	}

	return r, nil
}

// Dispatched increments the outcome counter and, for served exchanges,
// observes the per-key count.
func (r *HostRecorder) Dispatched(outcome Outcome, count int) {
	if c, ok := r.outcomes[outcome]; ok {
		c.Inc()
	}
	if count > 0 {
		r.hits.Observe(float64(count))
	}
}

// WildcardQueued increments the pending-wildcards gauge.
func (r *HostRecorder) WildcardQueued() { r.pending.Inc() }

// WildcardServed decrements the pending-wildcards gauge.
func (r *HostRecorder) WildcardServed() { r.pending.Dec() }

// Nop returns a Recorder that drops every event.
func Nop() Recorder { return nop{} }

type nop struct{}

func (nop) Dispatched(Outcome, int) {}
func (nop) WildcardQueued()         {}
func (nop) WildcardServed()         {}

func newCounter(host *hostSink, name string) (*Counter, error) {
	if !isMetricNameValid.MatchString(name) {
		return nil, ErrInvalidMetricName
	}
	return &Counter{name: name, host: host}, nil
}

func newGauge(host *hostSink, name string) (*Gauge, error) {
	if !isMetricNameValid.MatchString(name) {
		return nil, ErrInvalidMetricName
	}
	return &Gauge{name: name, host: host}, nil
}

func newHistogram(host *hostSink, name string) (*Histogram, error) {
	if !isMetricNameValid.MatchString(name) {
		return nil, ErrInvalidMetricName
	}
	return &Histogram{name: name, host: host}, nil
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	payload, err := (&proto.MetricsCounter{Name: c.name}).MarshalVT()
	if err != nil {
		return
	}
	c.host.call(fnCounter, payload)
}

// Inc increments the gauge by one.
func (g *Gauge) Inc() { g.emit(actionInc) }

// Dec decrements the gauge by one.
func (g *Gauge) Dec() { g.emit(actionDec) }

func (g *Gauge) emit(action string) {
	payload, err := (&proto.MetricsGauge{Name: g.name, Action: action}).MarshalVT()
	if err != nil {
		return
	}
	g.host.call(fnGauge, payload)
}

// Observe records a value for the histogram.
func (h *Histogram) Observe(value float64) {
	payload, err := (&proto.MetricsHistogram{Name: h.name, Value: value}).MarshalVT()
	if err != nil {
		return
	}
	h.host.call(fnHistogram, payload)
}

func (s *hostSink) call(function string, payload []byte) {
	_, _ = s.hostCall(s.namespace, capabilityName, function, payload)
}
