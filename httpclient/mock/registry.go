package mock

import (
	"strings"

	"github.com/tarmac-project/httpmock/httpclient"
)

// MatchKey builds the "METHOD URL" key used to match requests. The method is
// uppercased; the URL is compared verbatim.
func MatchKey(method, url string) string {
	return strings.ToUpper(method) + " " + url
}

// RequestKey builds the match key for a request.
func RequestKey(req *httpclient.Request) string {
	var u string
	if req.URL != nil {
		u = req.URL.String()
	}
	return MatchKey(req.Method, u)
}

// normalizeKey uppercases the method part of a pre-built "METHOD URL" key.
func normalizeKey(key string) string {
	method, url, ok := strings.Cut(key, " ")
	if !ok {
		return strings.ToUpper(key)
	}
	return MatchKey(method, url)
}

// registered is a keyed response and its optional repeat limit.
type registered struct {
	response *httpclient.Response
	limit    int
	limited  bool
}

// registry maps match keys to responses and counts dispatches per key.
type registry struct {
	entries map[string]registered
	usage   map[string]int
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[string]registered),
		usage:   make(map[string]int),
	}
}

// set replaces any earlier registration for key, limit included.
func (r *registry) set(key string, entry registered) {
	r.entries[key] = entry
}

func (r *registry) get(key string) (registered, bool) {
	e, ok := r.entries[key]
	return e, ok
}

func (r *registry) len() int { return len(r.entries) }

// exhausted reports whether a limited entry has been used up.
func (r *registry) exhausted(key string, e registered) bool {
	return e.limited && r.usage[key] >= e.limit
}

// use counts a dispatch for key and returns the new count.
func (r *registry) use(key string) int {
	r.usage[key]++
	return r.usage[key]
}

func (r *registry) uses(key string) int { return r.usage[key] }

func (r *registry) snapshot() map[string]*httpclient.Response {
	out := make(map[string]*httpclient.Response, len(r.entries))
	for k, e := range r.entries {
		out[k] = e.response
	}
	return out
}

// wildcardQueue holds responses served by global request position.
type wildcardQueue struct {
	entries []*httpclient.Response
	taken   []bool
}

func (q *wildcardQueue) push(resp *httpclient.Response) {
	q.entries = append(q.entries, resp)
	q.taken = append(q.taken, false)
}

// take consumes the entry at ordinal if it exists and was not served yet.
func (q *wildcardQueue) take(ordinal int) (*httpclient.Response, bool) {
	if ordinal < 0 || ordinal >= len(q.entries) || q.taken[ordinal] {
		return nil, false
	}
	q.taken[ordinal] = true
	return q.entries[ordinal], true
}

// remaining returns the unserved entries still reachable from position from.
// Entries whose position has already passed can never be served.
func (q *wildcardQueue) remaining(from int) []*httpclient.Response {
	var out []*httpclient.Response
	for i := max(from, 0); i < len(q.entries); i++ {
		if !q.taken[i] {
			out = append(out, q.entries[i])
		}
	}
	return out
}
