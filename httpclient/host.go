package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	httpmock "github.com/tarmac-project/httpmock"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	// Capability is the host capability that serves HTTP client calls.
	Capability = "httpclient"

	// Function is the host function invoked for every request.
	Function = "call"
)

const (
	hostStatusOK       = int32(200)
	hostStatusPartial  = int32(206)
	hostStatusBadInput = int32(400)
	hostStatusMissing  = int32(404)
	hostStatusError    = int32(500)
)

// Config configures the host-backed HTTP client.
//
// SDKConfig supplies the namespace used when making waPC host calls. If the
// Namespace is empty, it defaults to httpmock.DefaultNamespace during New.
// HostCall allows tests to inject a custom host function; when nil, the client
// uses wapc.HostCall.
type Config struct {
	// SDKConfig provides the runtime namespace for host calls.
	SDKConfig httpmock.RuntimeConfig
	// InsecureSkipVerify disables TLS verification when supported.
	InsecureSkipVerify bool
	// HostCall overrides the waPC host function used for requests.
	HostCall func(string, string, string, []byte) ([]byte, error)
}

// HTTPClient implements Client using waPC host calls.
type HTTPClient struct {
	cfg      Config
	hostCall func(string, string, string, []byte) ([]byte, error)
}

// Ensure HTTPClient always satisfies the Client interface at compile time.
var _ Client = (*HTTPClient)(nil)

// New creates a new HTTP client with the provided configuration.
func New(config Config) (*HTTPClient, error) {
	hc := &HTTPClient{cfg: config}
	hc.cfg.SDKConfig = config.SDKConfig.WithDefaults()

	hc.hostCall = wapc.HostCall
	if config.HostCall != nil {
		hc.hostCall = config.HostCall
	}

	return hc, nil
}

// Get issues a GET to the specified URL and returns the response.
func (c *HTTPClient) Get(urlStr string) (*Response, error) {
	return c.send(http.MethodGet, urlStr, "", nil)
}

// Post issues a POST to the URL with the provided contentType and body.
func (c *HTTPClient) Post(urlStr, contentType string, body io.Reader) (*Response, error) {
	return c.send(http.MethodPost, urlStr, contentType, body)
}

// Put issues a PUT to the URL with the provided contentType and body.
func (c *HTTPClient) Put(urlStr, contentType string, body io.Reader) (*Response, error) {
	return c.send(http.MethodPut, urlStr, contentType, body)
}

// Delete issues a DELETE to the specified URL.
func (c *HTTPClient) Delete(urlStr string) (*Response, error) {
	return c.send(http.MethodDelete, urlStr, "", nil)
}

// send builds a request for the shortcut methods and hands it to Do.
func (c *HTTPClient) send(method, urlStr, contentType string, body io.Reader) (*Response, error) {
	req, err := NewRequest(method, urlStr, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(req)
}

// Do issues a custom request built with NewRequest and returns the response.
func (c *HTTPClient) Do(req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	// Validate the URL before touching the body stream.
	if req.URL == nil || req.URL.Host == "" {
		return nil, ErrInvalidURL
	}

	body, err := ReadBody(req)
	if err != nil {
		return nil, err
	}

	return c.doHTTPCall(encodeRequest(req, body, c.cfg.InsecureSkipVerify))
}

// doHTTPCall marshals the protobuf request, performs the host call, and
// converts the host reply into a Response.
func (c *HTTPClient) doHTTPCall(req *proto.HTTPClient) (*Response, error) {
	b, err := req.MarshalVT()
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	resp, err := c.hostCall(c.cfg.SDKConfig.Namespace, Capability, Function, b)
	if err != nil {
		return nil, errors.Join(httpmock.ErrHostCall, err)
	}

	var r proto.HTTPClientResponse
	if unmarshalErr := r.UnmarshalVT(resp); unmarshalErr != nil {
		return nil, errors.Join(ErrUnmarshalResponse, unmarshalErr)
	}

	status := r.GetStatus()
	if status == nil {
		return nil, httpmock.ErrHostResponseInvalid
	}

	statusCode := status.GetCode()
	switch statusCode {
	case hostStatusOK, hostStatusPartial:
	case hostStatusBadInput, hostStatusMissing, hostStatusError:
		detail := fmt.Sprintf("host status %d", statusCode)
		if msg := status.GetStatus(); msg != "" {
			detail = fmt.Sprintf("%s: %s", detail, msg)
		}
		return nil, errors.Join(httpmock.ErrHostError, errors.New(detail))
	default:
		return nil, errors.Join(
			httpmock.ErrHostResponseInvalid,
			fmt.Errorf("unexpected host status code %d", statusCode),
		)
	}

	return decodeResponse(&r), nil
}

// encodeRequest converts a Request and its already-read body into the
// protobuf envelope understood by the host.
func encodeRequest(req *Request, body []byte, insecure bool) *proto.HTTPClient {
	pbReq := &proto.HTTPClient{
		Method:   req.Method,
		Url:      req.URL.String(),
		Insecure: insecure,
		Body:     body,
		Headers:  make(map[string]*proto.Header, len(req.Header)),
	}
	for key, values := range req.Header {
		pbReq.Headers[key] = &proto.Header{Values: values}
	}
	return pbReq
}

// decodeResponse builds a Response from a host reply whose status was accepted.
func decodeResponse(r *proto.HTTPClientResponse) *Response {
	httpCode := int(r.GetCode())
	out := &Response{
		Status:     http.StatusText(httpCode),
		StatusCode: httpCode,
		Header:     make(http.Header),
	}

	for name, header := range r.GetHeaders() {
		out.Header[name] = header.GetValues()
	}

	if body := r.GetBody(); len(body) > 0 {
		out.Body = io.NopCloser(bytes.NewReader(body))
	}

	return out
}
