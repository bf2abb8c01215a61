package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/sheetwork/internal/agon"
	"github.com/roach88/sheetwork/internal/host"
	"github.com/roach88/sheetwork/internal/testutil"
	"github.com/roach88/sheetwork/internal/trigger"
)

// WriteRecord is one batched host write as the store observed it.
type WriteRecord struct {
	// Silent marks engine finalize writes (notification-suppressed).
	// Non-silent records are the scenario's own change steps.
	Silent bool `json:"silent"`

	// Values is the full batched write.
	Values map[string]string `json:"values"`
}

// Result is the outcome of one scenario run.
type Result struct {
	// Trace lists every host write in order.
	Trace []WriteRecord

	// Final is the complete attribute state after the last step.
	Final map[string]string
}

// Run executes a scenario against a fresh in-memory store.
//
// Row ids come from a sequence generator and time from a manual clock,
// so two runs of the same scenario produce identical traces.
func Run(scenario *Scenario) (*Result, error) {
	store := host.NewMemoryStore(
		host.WithRowIDGenerator(testutil.NewSequenceGenerator("row")),
	)
	clock := testutil.NewManualClock()
	coord := trigger.New(store, trigger.WithNow(clock.Now))

	lang := scenario.Lang
	if lang == "" {
		lang = "en"
	}
	sheet := agon.New(store, agon.Locales().Pick(lang))
	sheet.Register(coord)

	ctx := context.Background()
	if len(scenario.Initial) > 0 {
		if err := store.Write(ctx, scenario.Initial, host.WriteOptions{Silent: true}); err != nil {
			return nil, fmt.Errorf("apply initial state: %w", err)
		}
	}

	// Record traffic only after initial state is in place.
	result := &Result{}
	store.OnWrite = func(values map[string]string, opts host.WriteOptions) {
		copied := make(map[string]string, len(values))
		for k, v := range values {
			copied[k] = v
		}
		result.Trace = append(result.Trace, WriteRecord{Silent: opts.Silent, Values: copied})
	}

	for i, step := range scenario.Steps {
		if err := applyStep(ctx, store, clock, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	result.Final = store.Snapshot()
	return result, nil
}

func applyStep(ctx context.Context, store *host.MemoryStore, clock *testutil.ManualClock, step Step) error {
	switch {
	case step.Open:
		store.Fire(host.Event{Kind: host.EventOpen})
	case step.Change != nil:
		return store.Write(ctx,
			map[string]string{step.Change.Field: step.Change.Value},
			host.WriteOptions{})
	case step.Click != "":
		store.Fire(host.Event{Kind: host.EventClick, Button: step.Click})
	case step.Drop != "":
		store.Fire(host.Event{Kind: host.EventDrop, Payload: step.Drop})
	case step.AdvanceMS != 0:
		clock.Advance(time.Duration(step.AdvanceMS) * time.Millisecond)
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}
