package engine

import (
	"fmt"
	"sort"

	"github.com/roach88/sheetwork/internal/host"
)

// Declaration names everything a session will touch: flat attributes
// plus, per repeating section, the members needed from every row.
//
// Declarations are explicit configuration passed at session open, not
// module-level tables - the engine has no knowledge of any particular
// sheet's schema. Keys outside the declaration read as empty; a
// handler must declare what it reads, though it may freely write keys
// it never declared (a freshly appended row is write-only by nature).
type Declaration struct {
	// Fields lists flat attribute names.
	Fields []string

	// Sections maps a section name to the member names wanted from
	// each of its rows. A nil or empty member list still resolves the
	// section's row ids, which is all an append-only handler needs.
	Sections map[string][]string
}

// Validate rejects declarations whose section names would break the
// row key grammar.
func (d Declaration) Validate() error {
	for section := range d.Sections {
		if err := host.ValidateSectionName(section); err != nil {
			return fmt.Errorf("invalid declaration: %w", err)
		}
	}
	return nil
}

// sectionNames returns the declared section names in sorted order so
// key expansion is deterministic regardless of map iteration.
func (d Declaration) sectionNames() []string {
	names := make([]string, 0, len(d.Sections))
	for name := range d.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
