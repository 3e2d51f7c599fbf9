// Package events carries the one-shot notification from the loopback
// listener back to the host application.
package events

import "context"

// CallbackEvent is the event name under which a received credential payload
// is forwarded to the host application.
const CallbackEvent = "oauth-callback"

// Notifier receives fire-and-forget notifications from the listener's
// background goroutine. Implementations must be safe to invoke from any
// goroutine and must never block: the listener is about to terminate when it
// notifies and will not wait for delivery.
type Notifier interface {
	Notify(event, payload string)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(event, payload string)

// Notify calls f.
func (f NotifierFunc) Notify(event, payload string) { f(event, payload) }

// OneShot is a Notifier that hands at most one payload to a single waiter.
// Later notifications are dropped, which matches the at-most-once contract of
// the callback listener.
type OneShot struct {
	ch chan string
}

// NewOneShot creates an empty one-shot notifier.
func NewOneShot() *OneShot {
	return &OneShot{ch: make(chan string, 1)}
}

// Notify delivers the payload without blocking. The event name is not
// inspected; the listener only ever emits CallbackEvent.
func (o *OneShot) Notify(_, payload string) {
	select {
	case o.ch <- payload:
	default:
	}
}

// Wait blocks until a payload has been delivered or the context is done.
func (o *OneShot) Wait(ctx context.Context) (string, error) {
	select {
	case payload := <-o.ch:
		return payload, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
