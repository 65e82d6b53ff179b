package mock

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tarmac-project/httpmock/httpclient"
	"gopkg.in/yaml.v3"
)

// fixtureResponse is a response as written in a fixture document.
type fixtureResponse struct {
	Method  string              `yaml:"method"`
	URL     string              `yaml:"url"`
	Status  int                 `yaml:"status"`
	Headers map[string][]string `yaml:"headers"`
	Body    *string             `yaml:"body"`
	Limit   *int                `yaml:"limit"`
}

// fixtureFile is the top-level fixture document.
type fixtureFile struct {
	RequestLimit *int              `yaml:"requestLimit"`
	Fallback     *fixtureResponse  `yaml:"fallback"`
	Responses    []fixtureResponse `yaml:"responses"`
	Wildcards    []fixtureResponse `yaml:"wildcards"`
}

// LoadFixtures registers responses, wildcards, the fallback and the request
// limit described by a YAML document:
//
//	requestLimit: 3
//	fallback: {status: 404, body: "missing"}
//	responses:
//	  - method: GET
//	    url: https://example.com/a
//	    status: 200
//	    headers: {Content-Type: [application/json]}
//	    body: '{"ok":true}'
//	    limit: 1
//	wildcards:
//	  - {status: 503}
//
// Status defaults to 200. The document is validated in full before anything
// is applied, so a rejected document leaves the client untouched. An empty
// document is a no-op.
func (c *Client) LoadFixtures(r io.Reader) error {
	var f fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Join(ErrInvalidFixture, err)
	}

	if err := f.validate(); err != nil {
		return errors.Join(ErrInvalidFixture, err)
	}

	for _, fr := range f.Responses {
		entry := registered{}
		if fr.Limit != nil {
			entry = limitOf(*fr.Limit)
		}
		c.register(MatchKey(fr.Method, fr.URL), fr.response(), entry)
	}
	for _, fr := range f.Wildcards {
		c.EnqueueWildcardResponse(fr.response())
	}
	if f.Fallback != nil {
		c.SetFallbackResponse(f.Fallback.response())
	}
	if f.RequestLimit != nil {
		c.SetRequestLimit(*f.RequestLimit)
	}

	return nil
}

func (f *fixtureFile) validate() error {
	if f.RequestLimit != nil && *f.RequestLimit < 0 {
		return fmt.Errorf("requestLimit must not be negative, got %d", *f.RequestLimit)
	}
	for i, fr := range f.Responses {
		if fr.Method == "" || fr.URL == "" {
			return fmt.Errorf("responses[%d]: method and url are required", i)
		}
		if fr.Limit != nil && *fr.Limit < 0 {
			return fmt.Errorf("responses[%d]: limit must not be negative, got %d", i, *fr.Limit)
		}
		if err := fr.validateStatus(); err != nil {
			return fmt.Errorf("responses[%d]: %w", i, err)
		}
	}
	for i, fr := range f.Wildcards {
		if err := fr.validateStatus(); err != nil {
			return fmt.Errorf("wildcards[%d]: %w", i, err)
		}
	}
	if f.Fallback != nil {
		if err := f.Fallback.validateStatus(); err != nil {
			return fmt.Errorf("fallback: %w", err)
		}
	}
	return nil
}

func (fr fixtureResponse) validateStatus() error {
	if fr.Status != 0 && (fr.Status < 100 || fr.Status > 999) {
		return fmt.Errorf("status %d is not a valid HTTP status code", fr.Status)
	}
	return nil
}

func (fr fixtureResponse) response() *httpclient.Response {
	code := fr.Status
	if code == 0 {
		code = http.StatusOK
	}
	var body []byte
	if fr.Body != nil {
		body = []byte(*fr.Body)
	}
	return NewResponse(code, body, fr.Headers)
}
