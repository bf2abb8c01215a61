package sheetdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDef = `
sheet: {
	name:    "agon"
	version: "1.0"
	fields: ["epithet", "boons_4_check_1"]
	sections: [
		{name: "bonds", members: ["autogen", "name"]},
		{name: "gear", members: ["name"]},
	]
	defaults: {"target_query": "?{Target number|0}"}
	seeds: [{section: "bonds", rows: [{autogen: "1"}, {autogen: "1"}]}]
}
`

func TestCompile_ValidDefinition(t *testing.T) {
	def, err := Compile([]byte(validDef), "sheet.cue")
	require.NoError(t, err)

	assert.Equal(t, "agon", def.Name)
	assert.Equal(t, "1.0", def.Version)
	assert.Equal(t, []string{"epithet", "boons_4_check_1"}, def.Fields)
	require.Len(t, def.Sections, 2)
	assert.Equal(t, Section{Name: "bonds", Members: []string{"autogen", "name"}}, def.Sections[0])
	assert.Equal(t, "?{Target number|0}", def.Defaults["target_query"])
	require.Len(t, def.Seeds, 1)
	assert.Equal(t, "bonds", def.Seeds[0].Section)
	assert.Len(t, def.Seeds[0].Rows, 2)
}

func TestCompile_MissingSheetStruct(t *testing.T) {
	_, err := Compile([]byte(`other: {name: "x"}`), "sheet.cue")
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sheet", ce.Field)
}

func TestCompile_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"missing name", `sheet: {version: "1.0"}`, "name"},
		{"missing version", `sheet: {name: "agon"}`, "version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]byte(tt.src), "sheet.cue")
			require.Error(t, err)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompile_BadSectionName(t *testing.T) {
	src := `sheet: {name: "x", version: "1", sections: [{name: "has_underscore", members: ["a"]}]}`
	_, err := Compile([]byte(src), "sheet.cue")
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sections", ce.Field)
}

func TestCompile_DuplicateSection(t *testing.T) {
	src := `sheet: {name: "x", version: "1", sections: [{name: "bonds"}, {name: "bonds"}]}`
	_, err := Compile([]byte(src), "sheet.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate section")
}

func TestCompile_SeedReferencesUndeclaredSection(t *testing.T) {
	src := `sheet: {name: "x", version: "1", seeds: [{section: "ghosts", rows: []}]}`
	_, err := Compile([]byte(src), "sheet.cue")
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "seeds", ce.Field)
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile([]byte(`sheet: {name: `), "sheet.cue")
	require.Error(t, err)
}

func TestDefinition_Declaration(t *testing.T) {
	def, err := Compile([]byte(validDef), "sheet.cue")
	require.NoError(t, err)

	decl := def.Declaration()
	assert.Equal(t, []string{"epithet", "boons_4_check_1"}, decl.Fields)
	assert.Equal(t, map[string][]string{
		"bonds": {"autogen", "name"},
		"gear":  {"name"},
	}, decl.Sections)
	require.NoError(t, decl.Validate())
}
