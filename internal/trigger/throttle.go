package trigger

import (
	"sync"
	"time"

	"github.com/roach88/sheetwork/internal/host"
)

// throttle returns a leading-edge gate around fn: the first call runs
// immediately, further calls inside the interval are dropped outright.
// Nothing is queued for later - trailing invocations would reintroduce
// the duplicate handler runs the throttle exists to prevent.
func throttle(interval time.Duration, now func() time.Time, fn host.Handler) host.Handler {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func(ev host.Event) {
		mu.Lock()
		t := now()
		if !last.IsZero() && t.Sub(last) < interval {
			mu.Unlock()
			return
		}
		last = t
		mu.Unlock()
		fn(ev)
	}
}
