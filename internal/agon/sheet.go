package agon

import (
	"context"
	"log/slog"

	"github.com/roach88/sheetwork/internal/engine"
	"github.com/roach88/sheetwork/internal/host"
	"github.com/roach88/sheetwork/internal/i18n"
	"github.com/roach88/sheetwork/internal/trigger"
)

// Sheet binds the AGON sheet logic to one host store and translation
// bundle. Register attaches all of its handlers to a coordinator;
// after that the sheet is entirely event-driven.
type Sheet struct {
	store host.Store
	loc   *i18n.Bundle
}

// New creates a Sheet. A nil bundle degrades every label to a visible
// placeholder but never fails.
func New(store host.Store, loc *i18n.Bundle) *Sheet {
	return &Sheet{store: store, loc: loc}
}

// Register wires all sheet handlers onto the coordinator.
func (s *Sheet) Register(c *trigger.Coordinator) {
	c.OnChange([]string{PathosTwoDiceField}, func(host.Event) {
		s.run("domain queries", []string{PathosTwoDiceField}, nil, s.setDomainQueries)
	}, "Handle giving two dice for extra domain")

	c.OnChange([]string{ExtraEpithetField}, func(host.Event) {
		s.run("epithet query", []string{ExtraEpithetField}, nil, s.setEpithetQuery)
	}, "Handle adding or removing an extra epithet")

	c.OnOpen(s.handleOpen, "Handle setting default attributes when opening the sheet")

	c.OnButton("refresh_queries", func(host.Event) {
		s.run("refresh queries",
			[]string{ExtraEpithetField, PathosTwoDiceField}, nil,
			func(sess *engine.Session) error {
				if err := s.setEpithetQuery(sess); err != nil {
					return err
				}
				return s.setDomainQueries(sess)
			})
	}, "Handle refreshing roll queries")

	c.OnDrop(s.handleDrop, "Handle dropped bond data")
}

// handleOpen sets the sheet's default queries and labels and, exactly
// once per sheet, seeds the default bond rows. The version marker is
// the idempotency guard: it is only empty before the first finalize.
func (s *Sheet) handleOpen() {
	ctx := context.Background()
	sess, err := engine.Open(ctx, s.store, engine.Declaration{
		Fields:   []string{ExtraEpithetField, PathosTwoDiceField, VersionField},
		Sections: map[string][]string{BondsSection: {"autogen"}},
	})
	if err != nil {
		slog.Error("open handler failed", "err", err)
		return
	}

	firstOpen := sess.Get(VersionField) == ""

	err = sess.SetAll(map[string]any{
		"advantage_bond_support_translated": s.loc.Get("advantage_bond_support"),
		"bonusdice_query":                   s.query("bonusdice_query", []string{"0"}),
		"divine_favor_query":                s.query("spend_divine_favor", []string{"0"}),
		"divine_favor_translated":           s.loc.Get("divine_favor"),
		"name_translated":                   s.loc.Get("name"),
		"target_query":                      s.query("target_number", []string{"0"}),
		VersionField:                        SheetVersion,
	})
	if err == nil {
		err = s.setEpithetQuery(sess)
	}
	if err == nil {
		err = s.setDomainQueries(sess)
	}
	if err == nil && firstOpen {
		err = s.seedDefaultBonds(sess)
	}
	if err != nil {
		slog.Error("open handler failed", "err", err)
		return
	}

	if _, err := sess.Finalize(ctx); err != nil {
		slog.Error("open handler finalize failed", "err", err)
	}
}

// seedDefaultBonds creates the fixed-size empty bond list. Each seeded
// row is tagged autogen="1" so later revisions can tell generated rows
// from player-entered ones.
func (s *Sheet) seedDefaultBonds(sess *engine.Session) error {
	rows, err := sess.Rows(BondsSection)
	if err != nil {
		return err
	}
	records := make([]engine.Record, DefaultBondCount)
	for i := range records {
		records[i] = engine.Record{"autogen": "1"}
	}
	return rows.Seed(records)
}

// run opens a session over the given declaration, applies fn, and
// finalizes. Handler errors are logged, never propagated - the host
// has no error channel, and a failed computation must not block the
// sheet.
func (s *Sheet) run(name string, fields []string, sections map[string][]string, fn func(*engine.Session) error) {
	ctx := context.Background()
	sess, err := engine.Open(ctx, s.store, engine.Declaration{Fields: fields, Sections: sections})
	if err != nil {
		slog.Error("handler session open failed", "handler", name, "err", err)
		return
	}
	if err := fn(sess); err != nil {
		slog.Error("handler failed", "handler", name, "err", err)
		return
	}
	if _, err := sess.Finalize(ctx); err != nil {
		slog.Error("handler finalize failed", "handler", name, "err", err)
	}
}
