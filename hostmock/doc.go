/*
Package hostmock provides a pretend host for waPC calls.

It validates exactly what a component sends to the host without needing a real
host running. The httpclient/mock package routes its host adapter through a
Mock, and tests use it directly to assert protobuf payloads.

Quick start

	m, _ := hostmock.New(hostmock.Config{
	  ExpectedNamespace:  "tarmac",
	  ExpectedCapability: "httpclient",
	  ExpectedFunction:   "call",
	  PayloadValidator: func(p []byte) error {
	    // Unmarshal and assert fields here
	    return nil
	  },
	  Response: func() []byte { return []byte("ok") },
	})

	resp, err := m.HostCall("tarmac", "httpclient", "call", []byte("payload"))

Behavior

  - If Fail is true, HostCall returns Error, or ErrOperationFailed when Error is nil.
  - Otherwise the expected namespace, capability and function are enforced
    when set; blank fields accept any value.
  - PayloadValidator runs next when provided.
  - Handler, when set, produces the reply from the payload. Otherwise Response
    provides the return bytes, or nil is returned.
  - Every invocation, successful or not, is appended to Calls.
*/
package hostmock
