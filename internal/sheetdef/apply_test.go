package sheetdef

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sheetwork/internal/host"
	"github.com/roach88/sheetwork/internal/testutil"
	"github.com/roach88/sheetwork/internal/trigger"
)

func openDefinitionStore(t *testing.T) *host.MemoryStore {
	t.Helper()
	def, err := Compile([]byte(validDef), "sheet.cue")
	require.NoError(t, err)

	store := host.NewMemoryStore(host.WithRowIDGenerator(
		testutil.NewSequenceGenerator("row"),
	))
	def.RegisterOpen(trigger.New(store), store)
	return store
}

func TestRegisterOpen_AppliesDefaultsAndSeeds(t *testing.T) {
	ctx := context.Background()
	store := openDefinitionStore(t)

	store.Fire(host.Event{Kind: host.EventOpen})

	snap := store.Snapshot()
	assert.Equal(t, "?{Target number|0}", snap["target_query"])
	assert.Equal(t, "1.0", snap[VersionAttribute])

	ids, err := store.ListRowIDs(ctx, "bonds")
	require.NoError(t, err)
	require.Len(t, ids, 2, "one seeded row per seed record")
	for _, id := range ids {
		assert.Equal(t, "1", snap[host.RowKey("bonds", id, "autogen")])
	}
}

func TestRegisterOpen_SeedsOnlyOnFirstOpen(t *testing.T) {
	ctx := context.Background()
	store := openDefinitionStore(t)

	store.Fire(host.Event{Kind: host.EventOpen})

	var writes int
	store.OnWrite = func(map[string]string, host.WriteOptions) { writes++ }
	store.Fire(host.Event{Kind: host.EventOpen})

	assert.Zero(t, writes, "a settled sheet finalizes an empty diff")

	ids, err := store.ListRowIDs(ctx, "bonds")
	require.NoError(t, err)
	assert.Len(t, ids, 2, "seed rows are created exactly once")
}

func TestRegisterOpen_VersionGuardSurvivesManualMarker(t *testing.T) {
	ctx := context.Background()
	store := openDefinitionStore(t)

	// A sheet that already carries a version marker skips seeding even
	// though it has no rows.
	require.NoError(t, store.Write(ctx,
		map[string]string{VersionAttribute: "0.9"}, host.WriteOptions{Silent: true}))

	store.Fire(host.Event{Kind: host.EventOpen})

	ids, err := store.ListRowIDs(ctx, "bonds")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, "1.0", store.Snapshot()[VersionAttribute],
		"the marker still advances to the definition's version")
}
