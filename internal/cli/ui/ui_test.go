package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scenepatch/scenepatch/internal/errors"
)

func TestFormatError(t *testing.T) {
	out := FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      "anchor not found",
		Problem:      "locate_anchor",
		Detail:       `no node named "Canvs"`,
		Suggestions:  []string{"Canvas"},
		HelpCommands: []string{"List scene nodes: scenepatch inspect main.fire"},
		NoColor:      true,
	})

	assert.Contains(t, out, "❌ ANCHOR NOT FOUND: locate_anchor")
	assert.Contains(t, out, `   no node named "Canvs"`)
	assert.Contains(t, out, "Did you mean: Canvas?")
	assert.Contains(t, out, "→ List scene nodes")
}

func TestFormatErrorLevels(t *testing.T) {
	assert.True(t, strings.HasPrefix(Warning("careful", true), "⚠️ careful"))
	assert.True(t, strings.HasPrefix(Info("note", true), "ℹ️ note"))
}

func TestPatchError(t *testing.T) {
	err := errors.New(errors.RangeError, "7", "only 3 enabled scenes").AtStep("select_scene")
	out := PatchError(err, nil, true)

	assert.Contains(t, out, "RANGE ERROR: select_scene")
	assert.Contains(t, out, "only 3 enabled scenes")
	assert.Contains(t, out, "scenepatch editor --list")

	plain := PatchError(fmt.Errorf("boom"), nil, true)
	assert.Equal(t, "❌ boom\n", plain)
}

func TestWriteSuccessAndStep(t *testing.T) {
	var buf bytes.Buffer
	WriteStep(&buf, "resolve_uuid", true)
	WriteSuccess(&buf, "patched", true)
	assert.Equal(t, "→ resolve_uuid\n✓ patched\n", buf.String())
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		candidates []string
		want       []string
	}{
		{"typo", "Canvs", []string{"Canvas", "Camera", "Canvas"}, []string{"Canvas"}},
		{"case", "canvas", []string{"Canvas"}, []string{"Canvas"}},
		{"exact skipped", "Canvas", []string{"Canvas"}, []string{}},
		{"closest first", "Node", []string{"Nodes1", "Node1", "Mode"}, []string{"Node1", "Mode", "Nodes1"}},
		{"cap", "ab", []string{"a", "b", "abc", "abd", "x"}, []string{"a", "b", "abc"}},
		{"nothing close", "Checker", []string{"Background"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.target, tt.candidates))
		})
	}
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 3, Distance("kitten", "sitting"))
	assert.Equal(t, 3, Distance("saturday", "sunday"))
	assert.Equal(t, 4, Distance("", "node"))
	assert.Equal(t, 1, Distance("Knoten", "Knöten"))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Index", "Name", "Component"}, true)
	table.AddRow("2", "Canvas", "cc.Canvas")
	table.AddRow("5", "InjectedNode")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "Index  Name          Component", lines[0])
	assert.Equal(t, "─────  ────────────  ─────────", lines[1])
	assert.Equal(t, "2      Canvas        cc.Canvas", lines[2])
	assert.Equal(t, "5      InjectedNode  ", lines[3])
}

func TestTableEmptyHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, nil, true).Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Scene", "assets/Main.fire")
	kv.AddRow("Component", "game.ScoreChecker")
	kv.Render()

	assert.Equal(t, "Scene:     assets/Main.fire\nComponent: game.ScoreChecker\n", buf.String())
}
