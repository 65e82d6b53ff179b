package mock

import (
	"errors"
	"io"
	"strings"
	"testing"
)

const fixtureDoc = `
requestLimit: 4
fallback:
  status: 404
  body: missing
responses:
  - method: get
    url: https://example.com/a
    headers:
      Content-Type: [application/json]
    body: '{"ok":true}'
    limit: 1
  - method: POST
    url: /submit
    status: 201
wildcards:
  - status: 503
`

func TestLoadFixtures(t *testing.T) {
	c := New(Config{})
	if err := c.LoadFixtures(strings.NewReader(fixtureDoc)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(c.Responses()); n != 2 {
		t.Fatalf("expected 2 registered responses, got %d", n)
	}
	if n := len(c.WildcardResponses()); n != 1 {
		t.Fatalf("expected 1 wildcard, got %d", n)
	}

	// First request takes the wildcard whatever it asks for.
	resp, err := c.Get("https://example.com/a")
	if err != nil || resp.StatusCode != 503 {
		t.Fatalf("expected wildcard 503, got %v %v", resp, err)
	}

	// The wildcard counted toward the key, so its limit of one is spent.
	if _, err := c.Get("https://example.com/a"); !errors.Is(err, ErrRequestLimit) {
		t.Fatalf("expected ErrRequestLimit, got %v", err)
	}

	resp, err = c.Post("/submit", "text/plain", nil)
	if err != nil || resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %v %v", resp, err)
	}

	resp, err = c.Get("https://example.com/unknown")
	if err != nil || resp.StatusCode != 404 {
		t.Fatalf("expected fallback 404, got %v %v", resp, err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "missing" {
		t.Fatalf("fallback body: got %q", body)
	}

	if _, err := c.Get("https://example.com/unknown"); !errors.Is(err, ErrTotalRequestLimit) {
		t.Fatalf("expected ErrTotalRequestLimit, got %v", err)
	}
}

func TestLoadFixturesDefaults(t *testing.T) {
	c := New(Config{})
	doc := "responses:\n  - method: GET\n    url: https://example.com\n    body: hello\n"
	if err := c.LoadFixtures(strings.NewReader(doc)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := c.Responses()["GET https://example.com"]
	if resp == nil {
		t.Fatal("response not registered")
	}
	if resp.StatusCode != 200 || resp.Status != "OK" {
		t.Fatalf("expected default 200 OK, got %d %q", resp.StatusCode, resp.Status)
	}

	// No limit was given, so the response is unlimited.
	for i := 0; i < 5; i++ {
		if _, err := c.Get("https://example.com"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
}

func TestLoadFixturesEmpty(t *testing.T) {
	c := New(Config{})
	if err := c.LoadFixtures(strings.NewReader("")); err != nil {
		t.Fatalf("empty document should be a no-op, got %v", err)
	}
	if len(c.Responses()) != 0 {
		t.Fatal("expected no responses")
	}
}

func TestLoadFixturesInvalid(t *testing.T) {
	tt := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "responses: [\n"},
		{"unknown field", "responses:\n  - method: GET\n    url: /a\n    delay: 5\n"},
		{"missing method", "responses:\n  - url: /a\n"},
		{"missing url", "responses:\n  - method: GET\n"},
		{"negative limit", "responses:\n  - method: GET\n    url: /a\n    limit: -1\n"},
		{"negative request limit", "requestLimit: -2\n"},
		{"bad response status", "responses:\n  - method: GET\n    url: /a\n    status: 42\n"},
		{"bad wildcard status", "wildcards:\n  - status: 1000\n"},
		{"bad fallback status", "fallback:\n  status: 7\n"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c := New(Config{})
			// A valid entry ahead of the invalid one must not be applied.
			doc := tc.doc
			if !strings.HasPrefix(doc, "responses:") {
				doc = "responses:\n  - method: GET\n    url: /ok\n" + doc
			}

			err := c.LoadFixtures(strings.NewReader(doc))
			if !errors.Is(err, ErrInvalidFixture) {
				t.Fatalf("expected ErrInvalidFixture, got %v", err)
			}
			if len(c.Responses()) != 0 || len(c.WildcardResponses()) != 0 {
				t.Fatal("rejected document must leave the client untouched")
			}
			if _, err := c.Get("/ok"); !errors.Is(err, ErrQueueEmpty) {
				t.Fatalf("expected ErrQueueEmpty, got %v", err)
			}
		})
	}
}
