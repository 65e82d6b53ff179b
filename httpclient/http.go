package httpclient

import (
	"errors"
	"io"
	"net/http"
	"net/url"
)

// Client provides an interface for making HTTP requests.
type Client interface {
	// Get issues a GET request to the specified URL.
	Get(url string) (*Response, error)

	// Post issues a POST request to the specified URL with the given content type and body.
	Post(url, contentType string, body io.Reader) (*Response, error)

	// Put issues a PUT request to the specified URL with the given content type and body.
	Put(url, contentType string, body io.Reader) (*Response, error)

	// Delete issues a DELETE request to the specified URL.
	Delete(url string) (*Response, error)

	// Do issues a custom HTTP request and returns the response.
	Do(req *Request) (*Response, error)
}

// Response represents an HTTP response.
type Response struct {
	// Status is the HTTP status text (e.g., "OK").
	Status string
	// StatusCode is the numeric HTTP status code (e.g., 200).
	StatusCode int
	// Header contains response headers. Nil is treated as empty.
	Header http.Header
	// Body is the response payload stream. It may be nil for empty bodies.
	Body io.ReadCloser
}

// Request represents an HTTP request to be sent by a Client.
type Request struct {
	// Method is the HTTP method (e.g., GET, POST).
	Method string
	// URL is the full request URL; Host must be non-empty.
	URL *url.URL
	// Header holds request headers. Nil is treated as empty.
	Header http.Header
	// Body is an optional request body stream.
	Body io.ReadCloser
}

var (
	// ErrInvalidURL indicates a malformed or unsupported URL.
	ErrInvalidURL = errors.New("invalid URL provided")

	// ErrMarshalRequest wraps failures while encoding the request payload.
	ErrMarshalRequest = errors.New("failed to create request")

	// ErrReadBody wraps failures while reading a request body stream.
	ErrReadBody = errors.New("failed to read request body")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")

	// ErrInvalidMethod indicates an HTTP method not permitted by NewRequest.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrNilRequest indicates Do received a nil Request pointer.
	ErrNilRequest = errors.New("request is nil")
)

// NewRequest creates a new Request object to use with the Do method.
//
// The method must be one of the standard HTTP methods and the URL must carry
// a host. A non-nil body is wrapped so it can be closed by the client.
func NewRequest(method, urlString string, body io.Reader) (*Request, error) {
	if !isValidMethod(method) {
		return nil, ErrInvalidMethod
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil || parsedURL == nil || parsedURL.Host == "" {
		return nil, ErrInvalidURL
	}

	req := &Request{
		Method: method,
		URL:    parsedURL,
		Header: make(http.Header),
	}

	if body != nil {
		rc, ok := body.(io.ReadCloser)
		if !ok {
			rc = io.NopCloser(body)
		}
		req.Body = rc
	}

	return req, nil
}

// ReadBody drains and closes the request body. A nil body yields nil bytes.
func ReadBody(req *Request) ([]byte, error) {
	if req == nil || req.Body == nil {
		return nil, nil
	}
	defer func() { _ = req.Body.Close() }()

	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, errors.Join(ErrReadBody, err)
	}
	return b, nil
}

func isValidMethod(method string) bool {
	switch method {
	case http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodConnect,
		http.MethodOptions,
		http.MethodTrace:
		return true
	default:
		return false
	}
}
