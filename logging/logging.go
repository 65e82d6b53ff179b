package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"

	httpmock "github.com/tarmac-project/httpmock"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const capabilityName = "logging"

// LevelTrace sits below slog.LevelDebug and maps to the host Trace function.
const LevelTrace = slog.Level(-8)

// Config controls how a logger interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig httpmock.RuntimeConfig

	// HostCall overrides the waPC host function used for logging operations.
	HostCall func(string, string, string, []byte) ([]byte, error)

	// Level is the minimum level forwarded to the host. Defaults to Info.
	Level slog.Leveler
}

// hostHandler formats records with a text handler and ships each line to the host.
type hostHandler struct {
	namespace string
	hostCall  func(string, string, string, []byte) ([]byte, error)

	// inner writes into buf; derived handlers share both along with mu.
	inner slog.Handler
	buf   *bytes.Buffer
	mu    *sync.Mutex
}

// New creates a logger that emits records through the host logging capability.
func New(cfg Config) (*slog.Logger, error) {
	hostCall := cfg.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	level := cfg.Level
	if level == nil {
		level = slog.LevelInfo
	}

	buf := &bytes.Buffer{}
	h := &hostHandler{
		namespace: cfg.SDKConfig.WithDefaults().Namespace,
		hostCall:  hostCall,
		inner: slog.NewTextHandler(buf, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: dropTime,
		}),
		buf: buf,
		mu:  &sync.Mutex{},
	}
	return slog.New(h), nil
}

// Nop returns a logger that discards all output.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func (h *hostHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *hostHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	line := bytes.TrimRight(h.buf.Bytes(), "\n")

	// Logging is best-effort; host failures are not surfaced to callers.
	_, _ = h.hostCall(h.namespace, capabilityName, hostFunction(r.Level), append([]byte(nil), line...))
	return nil
}

func (h *hostHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	return &c
}

func (h *hostHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	return &c
}

// hostFunction maps a slog level onto the host logging function name.
func hostFunction(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "Trace"
	case level < slog.LevelInfo:
		return "Debug"
	case level < slog.LevelWarn:
		return "Info"
	case level < slog.LevelError:
		return "Warn"
	default:
		return "Error"
	}
}

// dropTime removes the timestamp; the host stamps entries itself.
func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
