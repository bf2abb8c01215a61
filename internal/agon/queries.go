package agon

import (
	"strings"

	"github.com/roach88/sheetwork/internal/engine"
)

// Sheet attribute names and constants carried over from the live sheet.
const (
	// SheetVersion marks a sheet whose first-time setup has run.
	SheetVersion = "1.0"

	// VersionField holds the version marker.
	VersionField = "version"

	// ExtraEpithetField is the boon checkbox granting a second epithet.
	ExtraEpithetField = "boons_4_check_1"

	// PathosTwoDiceField is the boon checkbox that doubles the die
	// granted by spending pathos on an extra domain.
	PathosTwoDiceField = "boons_6_check_1"

	// BondsSection is the repeating section holding bond rows.
	BondsSection = "bonds"

	// DefaultBondCount is how many empty bond rows first-time setup
	// creates.
	DefaultBondCount = 8
)

// Domains lists the four AGON domains in display order.
var Domains = []string{
	"arts_oration",
	"blood_valor",
	"craft_reason",
	"resolve_spirit",
}

// The host's macro syntax treats a literal closing brace as the end of
// a roll template block, so nested blocks embed it as an HTML entity.
const brace = "&" + "#125" + ";"
const doubleBrace = brace + brace

// nameDice opens the roll expression every epithet option shares.
const nameDice = "roll=[[{@{name_die}[@{name_translated}]"

// query renders a host query prompt: a translated question followed by
// pipe-separated options the player picks from at roll time.
func (s *Sheet) query(question string, options []string) string {
	return "?{" + s.loc.Get(question) + "|" + strings.Join(options, "|") + "}"
}

// setEpithetQuery rebuilds the epithet-and-name roll query from the
// extra-epithet boon state.
func (s *Sheet) setEpithetQuery(sess *engine.Session) error {
	options := []string{
		s.loc.Get("none") + "," + nameDice,
		"@{epithet},epithet=@{epithet}" + doubleBrace + " {{" + nameDice + " + @{epithet_die}[" + s.loc.Get("epithet") + "]",
	}
	if sess.Get(ExtraEpithetField) == "1" {
		and := s.loc.Get("and")
		options = append(options,
			"@{epithet_2},epithet=@{epithet_2}"+doubleBrace+" {{"+nameDice+" + @{epithet_die}["+s.loc.Get("epithet")+"]",
			"@{epithet} "+and+" @{epithet_2},epithet=@{epithet} "+and+" @{epithet_2}"+doubleBrace+" {{"+nameDice+" + 2@{epithet_die}["+s.loc.Get("epithet")+"]",
		)
	}
	return sess.Set("epithet_and_name_query", s.query("epithet_dice_query", options))
}

// setDomainQueries rebuilds, for every domain, the prompt offering to
// add one of the other domains to the roll by spending pathos, plus
// the domain's translated label. The two-dice boon doubles the added
// die.
func (s *Sheet) setDomainQueries(sess *engine.Session) error {
	multiplier := ""
	if sess.Get(PathosTwoDiceField) == "1" {
		multiplier = "2"
	}
	for _, domain := range Domains {
		entries := []string{s.loc.Get("no") + ", "}
		for _, other := range Domains {
			if other == domain {
				continue
			}
			entries = append(entries,
				s.loc.Get(other)+", + "+multiplier+"@{"+other+"_die}["+s.loc.Get(other)+"]")
		}
		if err := sess.Set(domain+"_extra_domain_query", s.query("add_domain_spend_pathos", entries)); err != nil {
			return err
		}
		if err := sess.Set(domain+"_translated", s.loc.Get(domain)); err != nil {
			return err
		}
	}
	return nil
}
