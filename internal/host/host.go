package host

import (
	"context"
	"fmt"
	"strings"
)

// Store is the attribute storage surface a document host provides.
//
// All operations are batched and may suspend; context cancellation
// aborts the call. The contract deliberately mirrors a callback-based
// host: there is no way to observe intermediate state between a Read
// and the next Write.
//
// NewRowID is synchronous and NOT guaranteed collision-free across
// calls. Callers that need uniqueness must deduplicate themselves
// (the engine keeps a per-session minted-id set and retries).
type Store interface {
	// Read returns the current values for the given keys. Keys the
	// host has never stored are absent from the result; callers treat
	// absence as the empty string.
	Read(ctx context.Context, keys []string) (map[string]string, error)

	// Write stores the given values. With opts.Silent the host must
	// suppress change notifications for these keys, so self-authored
	// writes do not re-trigger the handlers that produced them.
	Write(ctx context.Context, values map[string]string, opts WriteOptions) error

	// ListRowIDs returns the row ids currently present in a repeating
	// section, in the host's stable display order. A section with no
	// rows yields an empty slice, not an error.
	ListRowIDs(ctx context.Context, section string) ([]string, error)

	// NewRowID mints a candidate row id. May return duplicates.
	NewRowID() string
}

// WriteOptions controls host-side behavior of a batched write.
type WriteOptions struct {
	// Silent suppresses change notifications for the written keys.
	Silent bool
}

// EventKind identifies the trigger that produced an Event.
type EventKind int

const (
	// EventChange fires when an attribute value changes.
	EventChange EventKind = iota + 1
	// EventOpen fires once when the sheet is first displayed.
	EventOpen
	// EventClick fires when a named sheet button is activated.
	EventClick
	// EventDrop fires when structured data is dropped onto the sheet.
	EventDrop
)

// Event carries the per-invocation context a trigger delivers.
type Event struct {
	Kind EventKind

	// SourceAttribute is the attribute that changed (EventChange only).
	SourceAttribute string
	// NewValue is the attribute's value after the change (EventChange only).
	NewValue string
	// Button is the activated button name (EventClick only).
	Button string
	// Payload is the raw dropped data (EventDrop only).
	Payload string
}

// Handler receives events for a subscription.
type Handler func(Event)

// Event spec tokens, matching the host's subscription grammar. A spec
// is a space-joined list of tokens; ChangePrefix and ClickPrefix
// tokens name the attribute or button they cover.
const (
	ChangePrefix = "change:"
	ClickPrefix  = "clicked:"
	OpenedSpec   = "sheet:opened"
	DropSpec     = "drop"
)

// EventSource delivers host events to subscribed handlers.
//
// Handlers for the same token are invoked in subscription order.
// Dispatch is synchronous within the host's event loop; a handler's
// own asynchronous work (a session's read/finalize chain) may still be
// in flight when the next event dispatches.
type EventSource interface {
	Subscribe(spec string, fn Handler)
}

const rowKeyPrefix = "repeating_"

// SectionKey returns the reserved collection key for a section. The
// engine rejects writes to this key; it exists only so the rejection
// has a concrete spelling.
func SectionKey(section string) string {
	return rowKeyPrefix + section
}

// RowKey builds the namespaced attribute key for one row member.
func RowKey(section, rowID, member string) string {
	return rowKeyPrefix + section + "_" + rowID + "_" + member
}

// ParseRowKey splits a row attribute key into its parts. Returns
// ok=false for keys that are not row keys. Relies on the key grammar:
// section and row id contain no underscores.
func ParseRowKey(key string) (section, rowID, member string, ok bool) {
	rest, found := strings.CutPrefix(key, rowKeyPrefix)
	if !found {
		return "", "", "", false
	}
	parts := strings.SplitN(rest, "_", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// ValidateSectionName rejects section names that would break the row
// key grammar.
func ValidateSectionName(section string) error {
	if section == "" {
		return fmt.Errorf("section name must not be empty")
	}
	if strings.Contains(section, "_") {
		return fmt.Errorf("section name %q must not contain underscores", section)
	}
	return nil
}

// ValidateRowID rejects row ids that would break the row key grammar.
// The default generators only mint hyphenated ids; this guards ids
// supplied from outside.
func ValidateRowID(id string) error {
	if id == "" {
		return fmt.Errorf("row id must not be empty")
	}
	if strings.Contains(id, "_") {
		return fmt.Errorf("row id %q must not contain underscores", id)
	}
	return nil
}
