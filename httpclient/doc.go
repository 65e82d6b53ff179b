/*
Package httpclient defines the HTTP client contract used by Tarmac functions
and a host-backed implementation of it.

Client offers convenience methods (Get, Post, Put, Delete) and a Do method for
custom requests built with NewRequest. HTTPClient serializes requests into a
protobuf envelope and hands them to the host through a waPC host call. Tests
that should not depend on a host can use the in-memory implementation in the
mock subpackage instead.

Errors use sentinel values combined with the underlying cause and can be
checked with errors.Is.
*/
package httpclient
