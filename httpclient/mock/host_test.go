package mock

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	httpmock "github.com/tarmac-project/httpmock"
	"github.com/tarmac-project/httpmock/hostmock"
	"github.com/tarmac-project/httpmock/httpclient"
)

func hostClient(t *testing.T, m *Client) *httpclient.HTTPClient {
	t.Helper()
	hc, err := httpclient.New(httpclient.Config{HostCall: m.HostCall})
	if err != nil {
		t.Fatalf("Failed to create HTTP client: %v", err)
	}
	return hc
}

func TestHostCall(t *testing.T) {
	t.Run("Round trips through the host client", func(t *testing.T) {
		m := New(Config{})
		m.RegisterResponse("GET", "https://example.com/api", NewResponse(
			http.StatusCreated,
			[]byte(`{"id":123}`),
			http.Header{"Content-Type": {"application/json"}, "X-Custom": {"value1", "value2"}},
		))

		resp, err := hostClient(t, m).Get("https://example.com/api")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("status code: want %d got %d", http.StatusCreated, resp.StatusCode)
		}
		if resp.Status != "Created" {
			t.Errorf("status: want Created got %q", resp.Status)
		}
		if resp.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type: got %q", resp.Header.Get("Content-Type"))
		}
		if got := resp.Header["X-Custom"]; len(got) != 2 || got[0] != "value1" || got[1] != "value2" {
			t.Errorf("multi-value header: got %v", got)
		}

		body, _ := io.ReadAll(resp.Body)
		if string(body) != `{"id":123}` {
			t.Errorf("body: got %s", body)
		}
	})

	t.Run("Registered body survives repeated serving", func(t *testing.T) {
		m := New(Config{})
		m.RegisterResponse("GET", "https://example.com/api", NewResponse(200, []byte("again"), nil))
		hc := hostClient(t, m)

		for i := 0; i < 3; i++ {
			resp, err := hc.Get("https://example.com/api")
			if err != nil {
				t.Fatalf("call %d: %v", i, err)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != "again" {
				t.Fatalf("call %d: body %q", i, body)
			}
		}
	})

	t.Run("Request reaches the history", func(t *testing.T) {
		m := New(Config{Fallback: NewResponse(404, nil, nil)})
		m.On("POST", "https://example.com/api").Return(NewResponse(200, nil, nil))

		_, err := hostClient(t, m).Post("https://example.com/api", "application/json", strings.NewReader(`{"name":"test"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		e := m.Timeline()[0]
		if e.Key() != "POST https://example.com/api" {
			t.Errorf("key: got %q", e.Key())
		}
		if e.Request().Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type not forwarded: %v", e.Request().Header)
		}
		body, _ := io.ReadAll(e.Request().Body)
		if string(body) != `{"name":"test"}` {
			t.Errorf("body: got %s", body)
		}
	})

	t.Run("Response without body", func(t *testing.T) {
		m := New(Config{})
		m.RegisterResponse("DELETE", "https://example.com/api/1", NewResponse(http.StatusNoContent, nil, nil))

		resp, err := hostClient(t, m).Delete("https://example.com/api/1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("status code: got %d", resp.StatusCode)
		}
		if resp.Body != nil {
			t.Errorf("expected nil body")
		}
	})

	t.Run("Dispatch errors surface through the client", func(t *testing.T) {
		tt := []struct {
			name  string
			setup func(m *Client)
			want  error
		}{
			{"queue empty", func(m *Client) {}, ErrQueueEmpty},
			{"missed", func(m *Client) {
				m.RegisterResponse("GET", "https://example.com/other", NewResponse(200, nil, nil))
			}, ErrRequestMissed},
			{"per-key limit", func(m *Client) {
				m.RegisterResponseLimit("GET", "https://example.com/api", NewResponse(200, nil, nil), 0)
			}, ErrRequestLimit},
			{"total limit", func(m *Client) {
				m.SetRequestLimit(0)
			}, ErrTotalRequestLimit},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				m := New(Config{})
				tc.setup(m)

				resp, err := hostClient(t, m).Get("https://example.com/api")
				if resp != nil {
					t.Errorf("expected nil response on error")
				}
				if !errors.Is(err, httpmock.ErrHostCall) {
					t.Errorf("expected ErrHostCall, got %v", err)
				}
				if !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("Routing", func(t *testing.T) {
		tt := []struct {
			name       string
			namespace  string
			capability string
			function   string
			want       error
		}{
			{"wrong namespace", "other", httpclient.Capability, httpclient.Function, hostmock.ErrUnexpectedNamespace},
			{"wrong capability", httpmock.DefaultNamespace, "kvstore", httpclient.Function, hostmock.ErrUnexpectedCapability},
			{"wrong function", httpmock.DefaultNamespace, httpclient.Capability, "get", hostmock.ErrUnexpectedFunction},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				m := New(Config{Fallback: NewResponse(200, nil, nil)})
				_, err := m.HostCall(tc.namespace, tc.capability, tc.function, nil)
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				if m.RequestCount() != 0 {
					t.Fatal("misrouted calls must not be dispatched")
				}
			})
		}
	})

	t.Run("Custom namespace", func(t *testing.T) {
		m := New(Config{
			Fallback:  NewResponse(200, nil, nil),
			SDKConfig: httpmock.RuntimeConfig{Namespace: "custom"},
		})
		hc, err := httpclient.New(httpclient.Config{
			SDKConfig: httpmock.RuntimeConfig{Namespace: "custom"},
			HostCall:  m.HostCall,
		})
		if err != nil {
			t.Fatalf("Failed to create HTTP client: %v", err)
		}
		if _, err := hc.Get("https://example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Invalid envelope", func(t *testing.T) {
		m := New(Config{Fallback: NewResponse(200, nil, nil)})
		_, err := m.HostCall(httpmock.DefaultNamespace, httpclient.Capability, httpclient.Function, []byte("not-a-protobuf"))
		if !errors.Is(err, ErrInvalidEnvelope) {
			t.Fatalf("expected ErrInvalidEnvelope, got %v", err)
		}
	})
}
