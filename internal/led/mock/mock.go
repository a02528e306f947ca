// Package mock provides a test double for led.Output.
//
// Use Output to inspect the exact sequence of calls the state machine made
// and to inject failures at a chosen call.
//
//	out := &mock.Output{OnErr: errors.New("pin busy")}
//	_ = out.On()           // returns OnErr
//	out.Calls()            // [CallOn]
package mock

import (
	"sync"

	"libdb.so/catblink/internal/led"
)

// Call is a single recorded method call.
type Call string

const (
	CallOn    Call = "on"
	CallOff   Call = "off"
	CallClose Call = "close"
)

// Output is a mock implementation of led.Output.
type Output struct {
	mu sync.Mutex

	// OnErr, if non-nil, is returned by every On call.
	OnErr error
	// OffErr, if non-nil, is returned by every Off call.
	OffErr error
	// CloseErr, if non-nil, is returned by Close.
	CloseErr error
	// FailAfter, if positive, makes the call with that 1-based index and all
	// later On calls fail with FailErr. Off calls still succeed so that
	// cleanup can be observed.
	FailAfter int
	// FailErr is the error used by FailAfter.
	FailErr error

	calls []Call
}

var _ led.Output = (*Output)(nil)

// On records the call and returns OnErr.
func (o *Output) On() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, CallOn)
	if o.FailAfter > 0 && len(o.calls) >= o.FailAfter {
		return o.FailErr
	}
	return o.OnErr
}

// Off records the call and returns OffErr.
func (o *Output) Off() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, CallOff)
	return o.OffErr
}

// Close records the call and returns CloseErr.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, CallClose)
	return o.CloseErr
}

// Calls returns a copy of every recorded call in order.
func (o *Output) Calls() []Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Call(nil), o.calls...)
}

// LastLevel returns the last On or Off call, ignoring Close. It returns the
// empty Call if the output was never set.
func (o *Output) LastLevel() Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.calls) - 1; i >= 0; i-- {
		if o.calls[i] != CallClose {
			return o.calls[i]
		}
	}
	return ""
}

// Reset clears all recorded calls.
func (o *Output) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = nil
}
