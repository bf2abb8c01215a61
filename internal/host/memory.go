package host

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// RowIDGenerator mints candidate row ids.
//
// Implemented by UUIDGenerator (production) and the deterministic
// generators in internal/testutil. Generators carry no uniqueness
// contract; deduplication is the caller's job.
type RowIDGenerator interface {
	Generate() string
}

// UUIDGenerator mints hyphenated UUIDv7 row ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so row ids
// sort by creation time, which keeps host display order and creation
// order aligned for free.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new hyphenated UUIDv7 string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// MemoryStore is an in-process Store and EventSource.
//
// Non-silent writes fan out change events to subscribers, mirroring a
// hosted document: a handler that writes a value it also listens to
// would loop forever unless the writer suppresses notifications. The
// engine's diff finalizer relies on exactly that suppression.
//
// Thread-safety: all methods are safe for concurrent use. Event
// dispatch happens outside the internal lock, so handlers may freely
// re-enter the store.
type MemoryStore struct {
	mu       sync.Mutex
	attrs    map[string]string
	rowOrder map[string][]string
	rowSeen  map[string]map[string]struct{}
	subs     map[string][]Handler
	idGen    RowIDGenerator

	// OnWrite, when set, observes every applied write (silent or not)
	// after it lands. Used by the scenario harness to record traces.
	OnWrite func(values map[string]string, opts WriteOptions)
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithRowIDGenerator overrides the default UUID row-id generator.
func WithRowIDGenerator(g RowIDGenerator) MemoryOption {
	return func(m *MemoryStore) {
		m.idGen = g
	}
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		attrs:    make(map[string]string),
		rowOrder: make(map[string][]string),
		rowSeen:  make(map[string]map[string]struct{}),
		subs:     make(map[string][]Handler),
		idGen:    UUIDGenerator{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Read implements Store. Unknown keys are absent from the result.
func (m *MemoryStore) Read(ctx context.Context, keys []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.attrs[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Write implements Store. Row keys register their row id in the
// section's first-seen order. Non-silent writes dispatch change events
// after the lock is released.
func (m *MemoryStore) Write(ctx context.Context, values map[string]string, opts WriteOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Apply in sorted key order so row registration and change
	// dispatch are deterministic for a batched write.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m.mu.Lock()
	for _, k := range keys {
		m.attrs[k] = values[k]
		if section, rowID, _, ok := ParseRowKey(k); ok {
			m.registerRowLocked(section, rowID)
		}
	}
	onWrite := m.OnWrite
	var pending []dispatch
	if !opts.Silent {
		for _, k := range keys {
			for _, fn := range m.subs[ChangePrefix+k] {
				pending = append(pending, dispatch{fn, Event{
					Kind:            EventChange,
					SourceAttribute: k,
					NewValue:        values[k],
				}})
			}
		}
	}
	m.mu.Unlock()

	if onWrite != nil {
		onWrite(values, opts)
	}
	for _, d := range pending {
		d.fn(d.ev)
	}
	return nil
}

// ListRowIDs implements Store, returning first-seen order.
func (m *MemoryStore) ListRowIDs(ctx context.Context, section string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.rowOrder[section]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// NewRowID implements Store by delegating to the configured generator.
func (m *MemoryStore) NewRowID() string {
	return m.idGen.Generate()
}

// Subscribe implements EventSource. Tokens within a spec are split on
// spaces; each token gets its own subscription slot.
func (m *MemoryStore) Subscribe(spec string, fn Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range strings.Fields(spec) {
		m.subs[token] = append(m.subs[token], fn)
	}
}

// Fire dispatches a non-change event (open, click, drop) to its
// subscribers in subscription order. Change events originate from
// Write, never from Fire.
func (m *MemoryStore) Fire(ev Event) {
	token := ""
	switch ev.Kind {
	case EventOpen:
		token = OpenedSpec
	case EventClick:
		token = ClickPrefix + ev.Button
	case EventDrop:
		token = DropSpec
	default:
		return
	}

	m.mu.Lock()
	handlers := make([]Handler, len(m.subs[token]))
	copy(handlers, m.subs[token])
	m.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Snapshot returns a copy of every stored attribute. Test helper.
func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.attrs))
	for k, v := range m.attrs {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) registerRowLocked(section, rowID string) {
	seen := m.rowSeen[section]
	if seen == nil {
		seen = make(map[string]struct{})
		m.rowSeen[section] = seen
	}
	if _, ok := seen[rowID]; ok {
		return
	}
	seen[rowID] = struct{}{}
	m.rowOrder[section] = append(m.rowOrder[section], rowID)
}

type dispatch struct {
	fn Handler
	ev Event
}
