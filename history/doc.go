/*
Package history records completed request/response exchanges.

An Exchange pairs the request a client received with the response it returned,
the per-key dispatch count at that moment, and a timestamp. A History is an
append-only, ordered log of exchanges. It can be walked with the cursor methods
(Rewind, Current, Key, Next, Valid), ranged over with All, or indexed directly
with At for test assertions. Entries are never removed.
*/
package history
