package mock

import (
	"bytes"
	"net/http"

	"github.com/tarmac-project/httpmock/httpclient"
)

// NewResponse builds a response that can be served repeatedly. Its Body
// rewinds when closed, so every caller that closes the body gets to read it
// again from the start. A nil body leaves Body nil.
func NewResponse(code int, body []byte, header http.Header) *httpclient.Response {
	resp := &httpclient.Response{
		StatusCode: code,
		Status:     http.StatusText(code),
		Header:     make(http.Header),
	}
	for k, values := range header {
		for _, v := range values {
			resp.Header.Add(k, v)
		}
	}
	if body != nil {
		resp.Body = newReplayBody(body)
	}
	return resp
}

// replayBody is an io.ReadCloser over fixed bytes that rewinds on Close.
type replayBody struct {
	data []byte
	r    *bytes.Reader
}

func newReplayBody(b []byte) *replayBody {
	return &replayBody{data: b, r: bytes.NewReader(b)}
}

func (b *replayBody) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b *replayBody) Close() error {
	b.r.Reset(b.data)
	return nil
}
