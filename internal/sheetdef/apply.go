package sheetdef

import (
	"context"
	"log/slog"

	"github.com/roach88/sheetwork/internal/engine"
	"github.com/roach88/sheetwork/internal/host"
	"github.com/roach88/sheetwork/internal/trigger"
)

// VersionAttribute holds the version marker a definition-driven open
// handler writes after first-time setup.
const VersionAttribute = "version"

// RegisterOpen wires an open handler that applies the definition's
// defaults and, exactly once per sheet, seeds its first-time rows.
// This is the declarative counterpart of a hand-written open handler:
// the version marker is the idempotency guard, and everything lands in
// the session's single finalize write.
func (d *Definition) RegisterOpen(c *trigger.Coordinator, store host.Store) {
	c.OnOpen(func() {
		d.applyOpen(context.Background(), store)
	}, "Apply sheet definition defaults for "+d.Name)
}

func (d *Definition) applyOpen(ctx context.Context, store host.Store) {
	decl := d.Declaration()
	if !containsField(decl.Fields, VersionAttribute) {
		decl.Fields = append(decl.Fields, VersionAttribute)
	}

	sess, err := engine.Open(ctx, store, decl)
	if err != nil {
		slog.Error("definition open handler failed", "sheet", d.Name, "err", err)
		return
	}

	firstOpen := sess.Get(VersionAttribute) == ""

	for key, value := range d.Defaults {
		if err := sess.Set(key, value); err != nil {
			slog.Error("definition default rejected", "sheet", d.Name, "key", key, "err", err)
			return
		}
	}
	if err := sess.Set(VersionAttribute, d.Version); err != nil {
		slog.Error("definition open handler failed", "sheet", d.Name, "err", err)
		return
	}

	if firstOpen {
		if err := d.applySeeds(sess); err != nil {
			slog.Error("definition seeding failed", "sheet", d.Name, "err", err)
			return
		}
	}

	if _, err := sess.Finalize(ctx); err != nil {
		slog.Error("definition open handler finalize failed", "sheet", d.Name, "err", err)
	}
}

func (d *Definition) applySeeds(sess *engine.Session) error {
	for _, seed := range d.Seeds {
		rows, err := sess.Rows(seed.Section)
		if err != nil {
			return err
		}
		records := make([]engine.Record, len(seed.Rows))
		for i, row := range seed.Rows {
			record := make(engine.Record, len(row))
			for member, value := range row {
				record[member] = value
			}
			records[i] = record
		}
		if err := rows.Seed(records); err != nil {
			return err
		}
	}
	return nil
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
