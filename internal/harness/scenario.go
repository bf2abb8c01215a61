// Package harness runs scripted sheet scenarios against the in-memory
// host store and records the resulting write traffic.
//
// A scenario is a YAML file: initial attribute state, a list of host
// events to fire, and expected final attributes. Deterministic row-id
// generation and a manual clock make traces byte-stable, so golden
// files can pin down exactly which writes a trigger produces - the
// minimal write-back property is asserted on the wire, not inferred.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one scripted run of the sheet.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files use it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Lang selects the translation bundle (BCP 47). Defaults to "en".
	Lang string `yaml:"lang,omitempty"`

	// Initial seeds host attributes before any event fires. Applied
	// silently, so it triggers nothing and appears in no trace.
	Initial map[string]string `yaml:"initial,omitempty"`

	// Steps are fired in order.
	Steps []Step `yaml:"steps"`

	// Expect lists attribute values that must hold after the run.
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Step is one host event (or clock movement). Exactly one field
// should be set.
type Step struct {
	// Open fires the sheet-open event.
	Open bool `yaml:"open,omitempty"`

	// Change writes one attribute non-silently, firing its change
	// handlers like a player edit would.
	Change *ChangeStep `yaml:"change,omitempty"`

	// Click fires the named button's click event.
	Click string `yaml:"click,omitempty"`

	// Drop fires a structured-data drop with the raw payload.
	Drop string `yaml:"drop,omitempty"`

	// AdvanceMS moves the manual clock forward, for throttle timing.
	AdvanceMS int `yaml:"advance_ms,omitempty"`
}

// ChangeStep is a simulated player edit of one attribute.
type ChangeStep struct {
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

// LoadScenario reads a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(src, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario must have a name")
	}
	return &sc, nil
}
