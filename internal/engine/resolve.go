package engine

import (
	"context"
	"sync"

	"github.com/roach88/sheetwork/internal/host"
)

// resolution is the output of section resolution: the concrete key set
// to read and the row ids per section in host order.
type resolution struct {
	keys   []string
	rowIDs map[string][]string
}

// resolveSections lists the row ids of every declared section and
// expands the declaration into the flat key list to read.
//
// The listings are independent host calls, so they run concurrently
// and join on a completion barrier. The barrier is sized one larger
// than the section count: the extra slot is the coordinator's own
// readiness, released once every listing has been dispatched. Zero
// declared sections, one, or many all pass through the same path.
//
// No read may start before every listing has reported - the key list
// is only complete once section membership is known.
func resolveSections(ctx context.Context, store host.Store, decl Declaration) (*resolution, error) {
	sections := decl.sectionNames()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	rowIDs := make(map[string][]string, len(sections))

	wg.Add(len(sections) + 1)
	for _, section := range sections {
		go func(section string) {
			defer wg.Done()
			ids, err := store.ListRowIDs(ctx, section)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			rowIDs[section] = ids
		}(section)
	}
	wg.Done() // coordinator readiness
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	keys := make([]string, 0, len(decl.Fields))
	keys = append(keys, decl.Fields...)
	for _, section := range sections {
		members := decl.Sections[section]
		for _, id := range rowIDs[section] {
			for _, member := range members {
				keys = append(keys, host.RowKey(section, id, member))
			}
		}
	}

	return &resolution{keys: keys, rowIDs: rowIDs}, nil
}
