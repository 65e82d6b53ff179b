/*
Package httpmock holds the runtime configuration and host errors shared by the
HTTP client packages.

The httpclient package defines the Client contract and a host-backed
implementation. The httpclient/mock package implements the same contract in
memory so code that depends on httpclient.Client can be tested without a host
or network. DefaultNamespace is used when a namespace is not explicitly
provided.
*/
package httpmock
