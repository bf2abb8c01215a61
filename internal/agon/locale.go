package agon

import (
	"golang.org/x/text/language"

	"github.com/roach88/sheetwork/internal/i18n"
)

// english is the built-in translation table. Hosted deployments ship
// additional languages through the catalog; any key missing from a
// table renders as a visible placeholder rather than failing.
var english = map[string]string{
	"none":    "None",
	"epithet": "Epithet",
	"and":     "and",
	"no":      "No",
	"name":    "Name",

	"arts_oration":   "Arts & Oration",
	"blood_valor":    "Blood & Valor",
	"craft_reason":   "Craft & Reason",
	"resolve_spirit": "Resolve & Spirit",

	"epithet_dice_query":      "Include your epithet?",
	"add_domain_spend_pathos": "Add another domain, spending pathos?",
	"bonusdice_query":         "Bonus dice",
	"spend_divine_favor":      "Spend divine favor?",
	"target_number":           "Target number",
	"advantage_bond_support":  "Advantage, bond support",
	"divine_favor":            "Divine Favor",
}

// Locales returns the sheet's translation catalog.
func Locales() *i18n.Catalog {
	c := i18n.NewCatalog()
	c.Add(language.English, english)
	return c
}
