/*
Package logging connects log/slog to the host runtime's logging capability.

New returns a *slog.Logger whose handler formats each record as logfmt text
and forwards it to the host, using the host function that matches the record
level (Trace, Debug, Info, Warn, Error). Components accept a *slog.Logger in
their Config; when none is supplied they use Nop, which discards everything.

	logger, _ := logging.New(logging.Config{Level: slog.LevelDebug})
	logger.Info("request dispatched", "key", "GET https://example.com")
*/
package logging
