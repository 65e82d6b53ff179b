/*
Package mock provides an in-memory implementation of the httpclient.Client
contract for tests.

Instead of calling the host, the mock Client returns responses that were
registered for a request's method and URL, queued as wildcards, or set as a
fallback. Every registry or wildcard dispatch is recorded in a history.History
so tests can assert on what was sent and what came back. Optional per-key and
client-wide limits turn unexpected extra calls into errors.

# Matching

A request's match key is "METHOD URL" with the method uppercased and the URL
compared verbatim. SendRequest resolves a request in this order:

 1. If a request limit is set and already reached, fail with ErrTotalRequestLimit.
 2. Count the request. If a wildcard was queued at this request's position
    (the Nth request overall takes the Nth wildcard), return it.
 3. If a response is registered for the key, return it unless its limit has
    been reached, in which case fail with ErrRequestLimit.
 4. If a fallback is set, return it. Fallback dispatches are not recorded.
 5. Fail with ErrQueueEmpty when nothing is registered or queued at all, or
    with ErrRequestMissed otherwise.

# Basic Usage

	m := mock.New(mock.Config{})
	m.On(http.MethodGet, "https://example.com/a").Times(1).Return(
		mock.NewResponse(http.StatusOK, []byte(`{"ok":true}`), nil),
	)

	resp, err := m.Get("https://example.com/a")   // first call succeeds
	_, err = m.Get("https://example.com/a")       // errors.Is(err, mock.ErrRequestLimit)

	for _, e := range m.Timeline() {
		// e.Request(), e.Response(), e.Count(), e.When()
	}

# Host Calls

Client.HostCall has the waPC host-call signature, so the host-backed
httpclient.HTTPClient can be pointed at the mock:

	hc, _ := httpclient.New(httpclient.Config{HostCall: m.HostCall})

# Fixtures and Metrics

LoadFixtures seeds responses, wildcards, the fallback and the request limit
from a YAML document. Config.Metrics accepts a metrics.Recorder, such as
metrics.New, to report each dispatch outcome to the host.

The mock is not safe for concurrent use.
*/
package mock
