package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/sheetwork/internal/host"
)

// Session is the in-memory read/write context for one trigger
// invocation.
//
// All reads are served from the snapshot taken at Open; all writes go
// through to the snapshot (so later reads in the same session observe
// them) and are recorded in the write buffer for the finalize diff.
//
// Thread-safety: a Session is confined to the handler invocation that
// opened it. It is not safe for concurrent use, matching the
// single-threaded handler model - concurrency exists only between
// sessions, never inside one.
type Session struct {
	store host.Store
	decl  Declaration

	snapshot map[string]string
	buffer   map[string]string
	rowSets  map[string]*RowSet

	// seenIDs holds every row id resolved or minted in this session.
	// It is the sole authority for append deduplication.
	seenIDs map[string]struct{}

	// reserved holds the section-collection keys whose direct write is
	// a programming error.
	reserved map[string]struct{}

	finalized bool
}

// Open resolves the declaration's sections, performs the session's one
// batched read, and returns a live session.
//
// Undeclared keys read as "" - callers must declare everything they
// will read. Appended rows are exempt: their keys may be written (and
// then read back) without declaration.
func Open(ctx context.Context, store host.Store, decl Declaration) (*Session, error) {
	if err := decl.Validate(); err != nil {
		return nil, err
	}

	res, err := resolveSections(ctx, store, decl)
	if err != nil {
		return nil, fmt.Errorf("resolve sections: %w", err)
	}

	values, err := store.Read(ctx, res.keys)
	if err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}

	s := &Session{
		store:    store,
		decl:     decl,
		snapshot: make(map[string]string, len(res.keys)),
		buffer:   make(map[string]string),
		rowSets:  make(map[string]*RowSet, len(decl.Sections)),
		seenIDs:  make(map[string]struct{}),
		reserved: make(map[string]struct{}, len(decl.Sections)),
	}
	for _, k := range res.keys {
		s.snapshot[k] = values[k]
	}
	for section := range decl.Sections {
		s.reserved[host.SectionKey(section)] = struct{}{}
		ids := res.rowIDs[section]
		s.rowSets[section] = &RowSet{session: s, section: section, ids: append([]string(nil), ids...)}
		for _, id := range ids {
			s.seenIDs[id] = struct{}{}
		}
	}

	slog.Debug("session opened",
		"fields", len(decl.Fields),
		"sections", len(decl.Sections),
		"keys", len(res.keys))

	return s, nil
}

// Get returns the session's current value for an attribute key,
// including values the session itself wrote. Keys outside the
// declaration (and never written) read as "".
func (s *Session) Get(name string) string {
	return s.snapshot[name]
}

// Set buffers a write. The value is coerced to its string form
// immediately; the snapshot sees it at once (write-through), the host
// only at Finalize, and only if it actually changed.
//
// Writing a declared section's collection key is rejected: structural
// writes have no meaning as scalars and silently storing them would
// discard the caller's intent.
func (s *Session) Set(name string, value any) error {
	if s.finalized {
		return newFinalizedError()
	}
	if _, bad := s.reserved[name]; bad {
		return newReservedSectionError(name)
	}
	v := coerce(value)
	s.snapshot[name] = v
	s.buffer[name] = v
	return nil
}

// SetAll buffers every entry of values via Set.
func (s *Session) SetAll(values map[string]any) error {
	for name, value := range values {
		if err := s.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Rows returns the row collection view for a declared section.
func (s *Session) Rows(section string) (*RowSet, error) {
	rs, ok := s.rowSets[section]
	if !ok {
		return nil, newUnknownSectionError(section)
	}
	return rs, nil
}

// Finalize computes the minimal write-back diff and issues the
// session's one batched write.
//
// It re-reads the current host values for exactly the keys the session
// wrote (not the keys it read - a key may be write-only), includes a
// key iff its buffered string form differs from the fresh host value,
// and writes the reduced set silently so the host does not re-trigger
// the handlers that produced it. Returns the written set.
//
// Diffing against the fresh re-read rather than the open-time snapshot
// is the anti-feedback-loop measure; see the package documentation for
// the consistency trade it makes.
func (s *Session) Finalize(ctx context.Context) (map[string]string, error) {
	if s.finalized {
		return nil, newFinalizedError()
	}
	s.finalized = true

	if len(s.buffer) == 0 {
		slog.Debug("session finalized", "written", 0)
		return map[string]string{}, nil
	}

	keys := make([]string, 0, len(s.buffer))
	for k := range s.buffer {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	current, err := s.store.Read(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("finalize re-read: %w", err)
	}

	out := make(map[string]string)
	for _, k := range keys {
		if s.buffer[k] != current[k] {
			out[k] = s.buffer[k]
		}
	}

	if len(out) > 0 {
		if err := s.store.Write(ctx, out, host.WriteOptions{Silent: true}); err != nil {
			return nil, fmt.Errorf("finalize write: %w", err)
		}
	}

	slog.Debug("session finalized",
		"buffered", len(s.buffer),
		"written", len(out))

	return out, nil
}

// coerce converts a value to its stored string form. Attributes are
// strings all the way down; everything else is a view on top.
func coerce(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
