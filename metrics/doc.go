/*
Package metrics reports mock dispatch activity through the Tarmac host metrics
capability.

A Recorder receives one event per dispatch decision made by the mock client
along with wildcard queue changes. HostRecorder turns those events into
counters, a pending-wildcards gauge and a histogram of per-key hit counts,
each sent as a protobuf payload over a waPC host call.

Emission is best-effort: marshal or host-call failures are swallowed so that
metrics never change the outcome of a dispatch.
*/
package metrics
