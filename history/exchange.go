package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/tarmac-project/httpmock/httpclient"
)

// Exchange is one completed call. It is immutable once created.
type Exchange struct {
	id       string
	key      string
	request  *httpclient.Request
	response *httpclient.Response
	count    int
	when     time.Time
}

// NewExchange records a request/response pair under the given match key.
// count is the per-key dispatch count at the time the response was returned.
func NewExchange(key string, req *httpclient.Request, resp *httpclient.Response, count int, when time.Time) Exchange {
	return Exchange{
		id:       uuid.NewString(),
		key:      key,
		request:  req,
		response: resp,
		count:    count,
		when:     when,
	}
}

// ID uniquely identifies the exchange.
func (e Exchange) ID() string { return e.id }

// Key is the "METHOD URL" match key the request resolved to.
func (e Exchange) Key() string { return e.key }

// Request returns the request as received.
func (e Exchange) Request() *httpclient.Request { return e.request }

// Response returns the response handed back to the caller.
func (e Exchange) Response() *httpclient.Response { return e.response }

// Count is the number of dispatches for Key, including this one.
func (e Exchange) Count() int { return e.count }

// When is the time the exchange completed.
func (e Exchange) When() time.Time { return e.when }
