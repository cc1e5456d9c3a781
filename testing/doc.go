// Package testing provides test utilities for the divvy library.
//
// It follows Go's convention of shipping test helpers in a dedicated package
// (similar to net/http/httptest):
//
//   - StartEmbeddedNATS: in-process NATS server with JetStream for store tests
//   - NewTestLogger: types.Logger that writes through testing.T
//
// Example usage:
//
//	import divvytest "github.com/divvylib/divvy/testing"
//
//	func TestMyStore(t *testing.T) {
//	    _, nc := divvytest.StartEmbeddedNATS(t)
//	    // Use nc for your tests; cleanup is automatic.
//	}
package testing
