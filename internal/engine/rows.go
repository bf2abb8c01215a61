package engine

import (
	"log/slog"

	"github.com/roach88/sheetwork/internal/host"
)

// RowSet is the ordered view of one repeating section's rows.
//
// The container is read-only: rows can be appended through it but
// never removed, and its order is the host's display order seeded at
// session open. Each row's fields are freely mutable.
type RowSet struct {
	session *Session
	section string
	ids     []string
}

// Len returns the number of rows currently in the view, including
// rows appended during this session.
func (rs *RowSet) Len() int {
	return len(rs.ids)
}

// IDs returns a copy of the row ids in order.
func (rs *RowSet) IDs() []string {
	return append([]string(nil), rs.ids...)
}

// At returns the row at position i. Rows are stable references: an
// appended row remains valid however the view grows afterwards.
func (rs *RowSet) At(i int) *Row {
	return &Row{session: rs.session, section: rs.section, id: rs.ids[i]}
}

// All returns every row in order.
func (rs *RowSet) All() []*Row {
	out := make([]*Row, len(rs.ids))
	for i := range rs.ids {
		out[i] = rs.At(i)
	}
	return out
}

// Append creates a new row with a fresh unique id and returns its
// handle. The row is immediately visible in the view and immediately
// writable - no host round trip.
//
// The host's id generator has no cross-call collision guarantee, so
// generation retries until an id never seen in this session comes
// back. The per-session seen set is the sole deduplication authority.
func (rs *RowSet) Append() (*Row, error) {
	if rs.session.finalized {
		return nil, newFinalizedError()
	}
	var id string
	for attempt := 0; ; attempt++ {
		id = rs.session.store.NewRowID()
		if _, dup := rs.session.seenIDs[id]; !dup {
			break
		}
		slog.Debug("row id collision, retrying",
			"section", rs.section,
			"id", id,
			"attempt", attempt+1)
	}
	return rs.appendID(id), nil
}

// AppendWithID creates a new row under an explicit id, for callers
// importing rows whose identity is fixed externally. Reusing an id
// already present in the session is a programming error, as is an id
// that breaks the row key grammar: an underscore in the id would make
// the stores re-parse the row's keys under a different row id.
func (rs *RowSet) AppendWithID(id string) (*Row, error) {
	if rs.session.finalized {
		return nil, newFinalizedError()
	}
	if err := host.ValidateRowID(id); err != nil {
		return nil, newInvalidRowIDError(rs.section, err)
	}
	if _, dup := rs.session.seenIDs[id]; dup {
		return nil, newDuplicateRowIDError(rs.section, id)
	}
	return rs.appendID(id), nil
}

// Record maps member names to values for one seeded row.
type Record map[string]any

// Seed appends one new row per record, in order, writing every field
// of each record into its row. Used for first-time population of
// fixed-size default lists and for importing dropped structured data.
func (rs *RowSet) Seed(records []Record) error {
	for _, record := range records {
		row, err := rs.Append()
		if err != nil {
			return err
		}
		for member, value := range record {
			if err := row.Set(member, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (rs *RowSet) appendID(id string) *Row {
	rs.session.seenIDs[id] = struct{}{}
	rs.ids = append(rs.ids, id)
	return &Row{session: rs.session, section: rs.section, id: id}
}

// Row is a handle onto one section row. Gets and sets route through
// the owning session, so row access obeys the same snapshot and
// write-buffer semantics as flat attributes.
type Row struct {
	session *Session
	section string
	id      string
}

// ID returns the row's opaque identifier.
func (r *Row) ID() string {
	return r.id
}

// Get returns the session's current value for one member of this row.
func (r *Row) Get(member string) string {
	return r.session.Get(host.RowKey(r.section, r.id, member))
}

// Set buffers a write to one member of this row.
func (r *Row) Set(member string, value any) error {
	return r.session.Set(host.RowKey(r.section, r.id, member), value)
}
