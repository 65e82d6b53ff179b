package mock

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	httpmock "github.com/tarmac-project/httpmock"
	"github.com/tarmac-project/httpmock/history"
	"github.com/tarmac-project/httpmock/hostmock"
	"github.com/tarmac-project/httpmock/httpclient"
	"github.com/tarmac-project/httpmock/logging"
	"github.com/tarmac-project/httpmock/metrics"
)

// Config controls construction of a Client.
type Config struct {
	// Responses pre-registers unlimited responses keyed by "METHOD URL".
	Responses map[string]*httpclient.Response

	// Fallback is returned when nothing else matches.
	Fallback *httpclient.Response

	// RequestLimit caps the number of requests the client accepts. Nil means
	// no limit.
	RequestLimit *int

	// History receives every registry and wildcard exchange. Defaults to
	// history.New().
	History history.Store

	// Logger receives dispatch decisions. Defaults to logging.Nop().
	Logger *slog.Logger

	// Metrics receives dispatch outcomes. Defaults to metrics.Nop().
	Metrics metrics.Recorder

	// Now stamps exchanges. Defaults to time.Now.
	Now func() time.Time

	// SDKConfig provides the namespace HostCall expects.
	SDKConfig httpmock.RuntimeConfig
}

// Client implements httpclient.Client with registered, queued and fallback
// responses. It never performs I/O.
type Client struct {
	registry  *registry
	wildcards *wildcardQueue
	fallback  *httpclient.Response

	requestLimit int
	limited      bool
	requests     int

	history history.Store
	log     *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
	host    *hostmock.Mock
}

// Compile-time check: ensure Client implements the httpclient.Client interface.
var _ httpclient.Client = (*Client)(nil)

// New creates a new mock HTTP client.
func New(config Config) *Client {
	c := &Client{
		registry:  newRegistry(),
		wildcards: &wildcardQueue{},
		fallback:  config.Fallback,
		history:   config.History,
		log:       config.Logger,
		metrics:   config.Metrics,
		now:       config.Now,
	}

	if c.history == nil {
		c.history = history.New()
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if config.RequestLimit != nil {
		c.SetRequestLimit(*config.RequestLimit)
	}

	for key, resp := range config.Responses {
		c.register(normalizeKey(key), resp, registered{})
	}

	// Config is static, so New on hostmock cannot fail.
	c.host, _ = hostmock.New(hostmock.Config{
		ExpectedNamespace:  config.SDKConfig.WithDefaults().Namespace,
		ExpectedCapability: httpclient.Capability,
		ExpectedFunction:   httpclient.Function,
		Handler:            c.serveHost,
	})

	return c
}

// SendRequest resolves a request against the wildcard queue, the registered
// responses and the fallback, in that order, and records the exchange.
func (c *Client) SendRequest(req *httpclient.Request) (*httpclient.Response, error) {
	if req == nil {
		return nil, httpclient.ErrNilRequest
	}

	key := RequestKey(req)

	if c.limited && c.requests >= c.requestLimit {
		c.log.Warn("request limit reached", "key", key, "limit", c.requestLimit)
		c.metrics.Dispatched(metrics.OutcomeTotalLimit, 0)
		return nil, &DispatchError{Kind: ErrTotalRequestLimit, Key: key, Limit: c.requestLimit}
	}

	c.requests++
	ordinal := c.requests - 1

	if resp, ok := c.wildcards.take(ordinal); ok {
		count := c.registry.use(key)
		c.record(key, req, resp, count)
		c.log.Debug("served wildcard response", "key", key, "ordinal", ordinal, "count", count)
		c.metrics.WildcardServed()
		c.metrics.Dispatched(metrics.OutcomeWildcard, count)
		return resp, nil
	}

	if entry, ok := c.registry.get(key); ok {
		if c.registry.exhausted(key, entry) {
			c.log.Warn("response limit reached", "key", key, "limit", entry.limit)
			c.metrics.Dispatched(metrics.OutcomeRequestLimit, 0)
			return nil, &DispatchError{Kind: ErrRequestLimit, Key: key, Limit: entry.limit}
		}
		count := c.registry.use(key)
		c.record(key, req, entry.response, count)
		c.log.Debug("served registered response", "key", key, "count", count)
		c.metrics.Dispatched(metrics.OutcomeRegistered, count)
		return entry.response, nil
	}

	// Fallback dispatches are intentionally left out of the history.
	if c.fallback != nil {
		c.log.Debug("served fallback response", "key", key)
		c.metrics.Dispatched(metrics.OutcomeFallback, 0)
		return c.fallback, nil
	}

	kind, outcome := ErrRequestMissed, metrics.OutcomeMissed
	if c.registry.len() == 0 && len(c.wildcards.remaining(c.requests)) == 0 {
		kind, outcome = ErrQueueEmpty, metrics.OutcomeQueueEmpty
	}
	c.log.Warn("no response for request", "key", key, "reason", kind)
	c.metrics.Dispatched(outcome, 0)
	return nil, &DispatchError{Kind: kind, Key: key}
}

// SendRequests sends each request in order and stops at the first failure,
// returning the responses collected before it. Exchanges already recorded
// stay in the history.
func (c *Client) SendRequests(reqs []*httpclient.Request) ([]*httpclient.Response, error) {
	out := make([]*httpclient.Response, 0, len(reqs))
	for _, req := range reqs {
		resp, err := c.SendRequest(req)
		if err != nil {
			return out, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (c *Client) record(key string, req *httpclient.Request, resp *httpclient.Response, count int) {
	c.history.Add(history.NewExchange(key, req, resp, count, c.now()))
}

// register stores resp under key, replacing any earlier response and limit.
func (c *Client) register(key string, resp *httpclient.Response, entry registered) {
	if resp != nil && resp.Header == nil {
		resp.Header = make(http.Header)
	}
	entry.response = resp
	c.registry.set(key, entry)
}

// RegisterResponse returns resp for every request matching method and URL.
func (c *Client) RegisterResponse(method, url string, resp *httpclient.Response) {
	c.register(MatchKey(method, url), resp, registered{})
}

// RegisterResponseLimit returns resp for at most limit requests matching
// method and URL. A negative limit means no limit.
func (c *Client) RegisterResponseLimit(method, url string, resp *httpclient.Response, limit int) {
	c.register(MatchKey(method, url), resp, limitOf(limit))
}

// RegisterResponseForRequest returns resp for requests matching req's method and URL.
func (c *Client) RegisterResponseForRequest(req *httpclient.Request, resp *httpclient.Response) {
	c.register(RequestKey(req), resp, registered{})
}

// RegisterResponseForRequestLimit is RegisterResponseForRequest with a repeat limit.
func (c *Client) RegisterResponseForRequestLimit(req *httpclient.Request, resp *httpclient.Response, limit int) {
	c.register(RequestKey(req), resp, limitOf(limit))
}

func limitOf(n int) registered {
	if n < 0 {
		return registered{}
	}
	return registered{limit: n, limited: true}
}

// EnqueueWildcardResponse queues resp for the request whose overall position
// matches the queue position, regardless of method and URL.
func (c *Client) EnqueueWildcardResponse(resp *httpclient.Response) {
	c.wildcards.push(resp)
	c.metrics.WildcardQueued()
}

// SetFallbackResponse sets the response returned when nothing else matches.
// A nil response removes the fallback.
func (c *Client) SetFallbackResponse(resp *httpclient.Response) {
	c.fallback = resp
}

// SetRequestLimit caps the number of requests the client accepts. A negative
// limit removes the cap.
func (c *Client) SetRequestLimit(limit int) {
	if limit < 0 {
		c.ClearRequestLimit()
		return
	}
	c.requestLimit = limit
	c.limited = true
}

// ClearRequestLimit removes the client-wide request cap.
func (c *Client) ClearRequestLimit() {
	c.requestLimit = 0
	c.limited = false
}

// Responses returns the registered responses keyed by match key.
func (c *Client) Responses() map[string]*httpclient.Response {
	return c.registry.snapshot()
}

// WildcardResponses returns the queued wildcard responses that can still be served.
func (c *Client) WildcardResponses() []*httpclient.Response {
	return c.wildcards.remaining(c.requests)
}

// Timeline returns every recorded exchange in order.
func (c *Client) Timeline() []history.Exchange {
	out := make([]history.Exchange, 0, c.history.Len())
	for _, e := range c.history.All() {
		out = append(out, e)
	}
	return out
}

// History returns the store exchanges are recorded in.
func (c *Client) History() history.Store { return c.history }

// RequestCount returns the number of requests counted against the request limit.
func (c *Client) RequestCount() int { return c.requests }

// Usage returns how many times a response was served for key.
func (c *Client) Usage(key string) int { return c.registry.uses(normalizeKey(key)) }

// On starts configuration of a response for a given method and URL.
func (c *Client) On(method, url string) *ResponseBuilder {
	return &ResponseBuilder{client: c, key: MatchKey(method, url)}
}

// OnRequest starts configuration of a response for requests like req.
func (c *Client) OnRequest(req *httpclient.Request) *ResponseBuilder {
	return &ResponseBuilder{client: c, key: RequestKey(req)}
}

// ResponseBuilder helps configure a response for a specific method and URL.
type ResponseBuilder struct {
	client *Client
	key    string
	entry  registered
}

// Times limits how often the response may be returned. A negative value
// means no limit.
func (b *ResponseBuilder) Times(n int) *ResponseBuilder {
	b.entry = limitOf(n)
	return b
}

// Return registers the response and returns the client for chaining.
func (b *ResponseBuilder) Return(resp *httpclient.Response) *Client {
	b.client.register(b.key, resp, b.entry)
	return b.client
}

// Get records and returns the configured response for a GET request.
func (c *Client) Get(url string) (*httpclient.Response, error) {
	return c.send(http.MethodGet, url, "", nil)
}

// Post records and returns the configured response for a POST request.
func (c *Client) Post(url, contentType string, body io.Reader) (*httpclient.Response, error) {
	return c.send(http.MethodPost, url, contentType, body)
}

// Put records and returns the configured response for a PUT request.
func (c *Client) Put(url, contentType string, body io.Reader) (*httpclient.Response, error) {
	return c.send(http.MethodPut, url, contentType, body)
}

// Delete records and returns the configured response for a DELETE request.
func (c *Client) Delete(url string) (*httpclient.Response, error) {
	return c.send(http.MethodDelete, url, "", nil)
}

// Do buffers the request body so the recorded request stays readable, then
// sends the request.
func (c *Client) Do(req *httpclient.Request) (*httpclient.Response, error) {
	if req == nil {
		return nil, httpclient.ErrNilRequest
	}

	if req.Body != nil {
		b, err := httpclient.ReadBody(req)
		if err != nil {
			return nil, err
		}
		req.Body = newReplayBody(b)
	}

	return c.SendRequest(req)
}

// send builds a request for the shortcut methods. Unlike httpclient.NewRequest
// it accepts URLs without a host so tests can match on bare paths.
func (c *Client) send(method, rawURL, contentType string, body io.Reader) (*httpclient.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, httpclient.ErrInvalidURL
	}

	req := &httpclient.Request{Method: method, URL: u, Header: make(http.Header)}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if body != nil {
		req.Body = io.NopCloser(body)
	}

	return c.Do(req)
}
