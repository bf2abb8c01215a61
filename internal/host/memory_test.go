package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReadMissingKeysAbsent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Write(ctx, map[string]string{"a": "1"}, WriteOptions{Silent: true}))

	got, err := m.Read(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, got)
}

func TestMemoryStore_RowRegistrationFirstSeenOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Write(ctx, map[string]string{RowKey("bonds", "z", "name"): "1"}, WriteOptions{Silent: true}))
	require.NoError(t, m.Write(ctx, map[string]string{RowKey("bonds", "a", "name"): "2"}, WriteOptions{Silent: true}))
	// Re-writing an existing row must not change its position.
	require.NoError(t, m.Write(ctx, map[string]string{RowKey("bonds", "z", "die"): "3"}, WriteOptions{Silent: true}))

	ids, err := m.ListRowIDs(ctx, "bonds")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, ids)

	other, err := m.ListRowIDs(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryStore_SilentWritesSuppressChangeEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	var events []Event
	m.Subscribe(ChangePrefix+"x", func(ev Event) { events = append(events, ev) })

	require.NoError(t, m.Write(ctx, map[string]string{"x": "1"}, WriteOptions{Silent: true}))
	assert.Empty(t, events, "silent write must not notify")

	require.NoError(t, m.Write(ctx, map[string]string{"x": "2"}, WriteOptions{}))
	require.Len(t, events, 1)
	assert.Equal(t, EventChange, events[0].Kind)
	assert.Equal(t, "x", events[0].SourceAttribute)
	assert.Equal(t, "2", events[0].NewValue)
}

func TestMemoryStore_SubscribeSpecCoversMultipleTokens(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	var fields []string
	m.Subscribe(ChangePrefix+"a "+ChangePrefix+"b", func(ev Event) {
		fields = append(fields, ev.SourceAttribute)
	})

	require.NoError(t, m.Write(ctx, map[string]string{"a": "1"}, WriteOptions{}))
	require.NoError(t, m.Write(ctx, map[string]string{"b": "2"}, WriteOptions{}))
	assert.Equal(t, []string{"a", "b"}, fields)
}

func TestMemoryStore_FireDispatchesInSubscriptionOrder(t *testing.T) {
	m := NewMemoryStore()

	var order []int
	m.Subscribe(OpenedSpec, func(Event) { order = append(order, 1) })
	m.Subscribe(OpenedSpec, func(Event) { order = append(order, 2) })

	m.Fire(Event{Kind: EventOpen})
	assert.Equal(t, []int{1, 2}, order)
}

func TestMemoryStore_HandlerMayReenterStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	m.Subscribe(ChangePrefix+"x", func(Event) {
		// A handler writing back silently must not deadlock or re-fire.
		_ = m.Write(ctx, map[string]string{"y": "derived"}, WriteOptions{Silent: true})
	})

	require.NoError(t, m.Write(ctx, map[string]string{"x": "1"}, WriteOptions{}))
	assert.Equal(t, "derived", m.Snapshot()["y"])
}

func TestParseRowKey(t *testing.T) {
	tests := []struct {
		key                     string
		section, rowID, member string
		ok                      bool
	}{
		{"repeating_bonds_r1_name", "bonds", "r1", "name", true},
		{"repeating_bonds_r1_check_1", "bonds", "r1", "check_1", true},
		{"version", "", "", "", false},
		{"repeating_bonds", "", "", "", false},
		{"repeating_bonds_r1", "", "", "", false},
	}
	for _, tt := range tests {
		section, rowID, member, ok := ParseRowKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.section, section, tt.key)
		assert.Equal(t, tt.rowID, rowID, tt.key)
		assert.Equal(t, tt.member, member, tt.key)
	}
}

func TestValidateSectionName(t *testing.T) {
	assert.NoError(t, ValidateSectionName("bonds"))
	assert.Error(t, ValidateSectionName(""))
	assert.Error(t, ValidateSectionName("has_underscore"))
}

func TestValidateRowID(t *testing.T) {
	assert.NoError(t, ValidateRowID("row-001"))
	assert.Error(t, ValidateRowID(""))
	assert.Error(t, ValidateRowID("imported_1"))
}

func TestUUIDGenerator_Distinct(t *testing.T) {
	g := UUIDGenerator{}
	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "_", "row ids must not break the key grammar")
}
