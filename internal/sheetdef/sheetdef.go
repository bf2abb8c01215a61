// Package sheetdef loads declarative sheet definitions written in CUE.
//
// A definition names the flat fields and repeating sections a sheet
// synchronizes, plus optional open-time defaults and first-time seed
// rows. It compiles down to the engine's Declaration, keeping the
// engine itself schema-free: no sheet vocabulary is baked into the
// core.
//
// Definitions use the CUE Go API directly (not a CLI subprocess):
//
//	sheet: {
//		name:    "agon"
//		version: "1.0"
//		fields: ["epithet", "boons_4_check_1"]
//		sections: [{name: "bonds", members: ["autogen", "name"]}]
//		defaults: {"target_query": "?{Target number|0}"}
//		seeds: [{section: "bonds", rows: [{autogen: "1"}]}]
//	}
package sheetdef

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sheetwork/internal/engine"
	"github.com/roach88/sheetwork/internal/host"
)

// Definition is a compiled sheet definition.
type Definition struct {
	// Name identifies the sheet.
	Name string `json:"name"`

	// Version is the marker written after first-time setup.
	Version string `json:"version"`

	// Fields lists the flat attributes the sheet synchronizes.
	Fields []string `json:"fields"`

	// Sections lists the repeating sections and their members.
	Sections []Section `json:"sections"`

	// Defaults are attribute values applied on sheet open.
	Defaults map[string]string `json:"defaults"`

	// Seeds are row lists created by first-time setup, in order.
	Seeds []Seed `json:"seeds"`
}

// Section declares one repeating section.
type Section struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Seed declares first-time rows for one section.
type Seed struct {
	Section string              `json:"section"`
	Rows    []map[string]string `json:"rows"`
}

// CompileError reports a definition problem with its CUE position when
// one is available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and compiles a definition file.
func Load(path string) (*Definition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return Compile(src, path)
}

// Compile parses CUE source into a validated Definition. The filename
// is used only for error positions.
func Compile(src []byte, filename string) (*Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile definition: %w", err)
	}

	sheetVal := v.LookupPath(cue.ParsePath("sheet"))
	if !sheetVal.Exists() {
		return nil, &CompileError{Field: "sheet", Message: "top-level sheet struct is required", Pos: v.Pos()}
	}

	def := &Definition{}
	if err := sheetVal.Decode(def); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	if err := validate(def, sheetVal); err != nil {
		return nil, err
	}
	return def, nil
}

// Declaration converts the definition into the engine's session input.
func (d *Definition) Declaration() engine.Declaration {
	sections := make(map[string][]string, len(d.Sections))
	for _, s := range d.Sections {
		sections[s.Name] = append([]string(nil), s.Members...)
	}
	return engine.Declaration{
		Fields:   append([]string(nil), d.Fields...),
		Sections: sections,
	}
}

func validate(def *Definition, v cue.Value) error {
	if def.Name == "" {
		return &CompileError{Field: "name", Message: "name is required", Pos: v.Pos()}
	}
	if def.Version == "" {
		return &CompileError{Field: "version", Message: "version is required", Pos: v.Pos()}
	}

	seen := make(map[string]struct{}, len(def.Sections))
	for _, s := range def.Sections {
		if err := host.ValidateSectionName(s.Name); err != nil {
			return &CompileError{Field: "sections", Message: err.Error(), Pos: v.Pos()}
		}
		if _, dup := seen[s.Name]; dup {
			return &CompileError{Field: "sections", Message: fmt.Sprintf("duplicate section %q", s.Name), Pos: v.Pos()}
		}
		seen[s.Name] = struct{}{}
	}

	for _, seed := range def.Seeds {
		if _, ok := seen[seed.Section]; !ok {
			return &CompileError{Field: "seeds", Message: fmt.Sprintf("seed references undeclared section %q", seed.Section), Pos: v.Pos()}
		}
	}
	return nil
}
