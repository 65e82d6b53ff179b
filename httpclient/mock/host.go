package mock

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/tarmac-project/httpmock/httpclient"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
)

// HostCall answers waPC host calls for the httpclient capability by
// dispatching the decoded request through SendRequest. Pass it as
// httpclient.Config.HostCall to drive the host-backed client with this mock.
//
// Calls for any other namespace, capability or function fail with the
// hostmock routing errors. Dispatch failures are returned as-is, so
// errors.Is still matches them through the client's host-call error.
func (c *Client) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	return c.host.HostCall(namespace, capability, function, payload)
}

// serveHost decodes an HTTPClient envelope, dispatches it and encodes the reply.
func (c *Client) serveHost(payload []byte) ([]byte, error) {
	var env proto.HTTPClient
	if err := env.UnmarshalVT(payload); err != nil {
		return nil, errors.Join(ErrInvalidEnvelope, err)
	}

	u, err := url.Parse(env.GetUrl())
	if err != nil {
		return nil, errors.Join(ErrInvalidEnvelope, err)
	}

	req := &httpclient.Request{
		Method: env.GetMethod(),
		URL:    u,
		Header: make(http.Header, len(env.GetHeaders())),
	}
	for name, h := range env.GetHeaders() {
		req.Header[name] = h.GetValues()
	}
	if body := env.GetBody(); len(body) > 0 {
		req.Body = newReplayBody(body)
	}

	resp, err := c.SendRequest(req)
	if err != nil {
		return nil, err
	}

	out, err := encodeResponse(resp)
	if err != nil {
		return nil, err
	}
	return out.MarshalVT()
}

// encodeResponse converts a served response into the host reply envelope.
func encodeResponse(resp *httpclient.Response) (*proto.HTTPClientResponse, error) {
	if resp == nil {
		resp = &httpclient.Response{}
	}

	out := &proto.HTTPClientResponse{
		Status:  &sdkproto.Status{Status: "OK", Code: 200},
		Code:    int32(resp.StatusCode),
		Headers: make(map[string]*proto.Header, len(resp.Header)),
	}
	for name, values := range resp.Header {
		out.Headers[name] = &proto.Header{Values: values}
	}

	if resp.Body != nil {
		b, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}
		out.Body = b
	}

	return out, nil
}
