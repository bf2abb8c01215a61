package agon

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/roach88/sheetwork/internal/engine"
)

// dropPayload is the structured shape a bond drop carries: one list of
// member-to-value records per section.
type dropPayload map[string][]map[string]string

// handleDrop imports dropped structured data as new bond rows.
//
// A payload that fails to parse, or that targets no importable
// section, is logged and treated as an empty import - dropped garbage
// must not take the sheet down.
func (s *Sheet) handleDrop(payload string) {
	var parsed dropPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		slog.Warn("ignoring malformed drop payload", "err", err)
		return
	}

	records := parsed[BondsSection]
	for section := range parsed {
		if section != BondsSection {
			slog.Warn("ignoring drop data for unknown section", "section", section)
		}
	}
	if len(records) == 0 {
		return
	}

	ctx := context.Background()
	sess, err := engine.Open(ctx, s.store, engine.Declaration{
		Sections: map[string][]string{BondsSection: nil},
	})
	if err != nil {
		slog.Error("drop handler session open failed", "err", err)
		return
	}

	rows, err := sess.Rows(BondsSection)
	if err != nil {
		slog.Error("drop handler failed", "err", err)
		return
	}
	seeds := make([]engine.Record, len(records))
	for i, rec := range records {
		seed := make(engine.Record, len(rec))
		for member, value := range rec {
			seed[member] = value
		}
		seeds[i] = seed
	}
	if err := rows.Seed(seeds); err != nil {
		slog.Error("drop handler failed", "err", err)
		return
	}

	written, err := sess.Finalize(ctx)
	if err != nil {
		slog.Error("drop handler finalize failed", "err", err)
		return
	}
	slog.Info("imported dropped rows",
		"section", BondsSection,
		"rows", len(seeds),
		"attributes", len(written))
}
