// Package trigger wires handler functions to host events: attribute
// changes, sheet opening, button clicks, and structured-data drops.
//
// The coordinator contributes two things beyond plain subscription:
// rapid repeated button activations collapse to at most one handler
// run per throttle interval (leading edge, no queued trailing run),
// and the single-field convenience routes first-load and on-change
// through the same computation. Handlers for the same trigger run in
// registration order; handlers for different triggers may overlap at
// the host-call level because every handler runs its own session.
package trigger

import (
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/sheetwork/internal/host"
)

// DefaultButtonInterval is the minimum spacing between two runs of the
// same button handler.
const DefaultButtonInterval = 50 * time.Millisecond

// Coordinator registers handlers against a host event source.
type Coordinator struct {
	src            host.EventSource
	now            func() time.Time
	buttonInterval time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNow overrides the time source used by button throttling.
func WithNow(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithButtonInterval overrides the button throttle interval.
func WithButtonInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		c.buttonInterval = d
	}
}

// New creates a Coordinator bound to an event source.
func New(src host.EventSource, opts ...Option) *Coordinator {
	c := &Coordinator{
		src:            src,
		now:            time.Now,
		buttonInterval: DefaultButtonInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// OnChange invokes fn whenever any of the named attributes changes.
// The event identifies which attribute actually changed.
func (c *Coordinator) OnChange(fields []string, fn host.Handler, name string) {
	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = host.ChangePrefix + f
	}
	slog.Info("registering change handler", "handler", name, "fields", strings.Join(fields, ", "))
	c.src.Subscribe(strings.Join(tokens, " "), func(ev host.Event) {
		slog.Debug("change handler triggered", "handler", name, "field", ev.SourceAttribute)
		fn(ev)
	})
}

// OnOpen invokes fn once when the sheet is first displayed.
func (c *Coordinator) OnOpen(fn func(), name string) {
	slog.Info("registering open handler", "handler", name)
	c.src.Subscribe(host.OpenedSpec, func(host.Event) {
		slog.Debug("open handler triggered", "handler", name)
		fn()
	})
}

// OnButton invokes fn when the named button is activated, throttled so
// rapid repeated activations inside the interval collapse to the first
// one. There is no trailing invocation: a dropped click is gone, the
// next click after the interval runs normally.
func (c *Coordinator) OnButton(button string, fn host.Handler, name string) {
	slog.Info("registering button handler", "handler", name, "button", button)
	throttled := throttle(c.buttonInterval, c.now, func(ev host.Event) {
		slog.Debug("button handler triggered", "handler", name, "button", button)
		fn(ev)
	})
	c.src.Subscribe(host.ClickPrefix+button, throttled)
}

// OnSingleField composes OnChange and OnOpen so first load and every
// later change of one attribute route through the same computation.
func (c *Coordinator) OnSingleField(field string, fn func(), name string) {
	c.OnChange([]string{field}, func(host.Event) { fn() }, name)
	c.OnOpen(fn, name)
}

// OnDrop invokes fn with the raw payload of a structured-data drop.
func (c *Coordinator) OnDrop(fn func(payload string), name string) {
	slog.Info("registering drop handler", "handler", name)
	c.src.Subscribe(host.DropSpec, func(ev host.Event) {
		slog.Debug("drop handler triggered", "handler", name)
		fn(ev.Payload)
	})
}
