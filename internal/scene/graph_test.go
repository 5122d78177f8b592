package scene

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenepatch/scenepatch/internal/errors"
)

func loadFixture(t *testing.T, name string) *Graph {
	t.Helper()
	g, err := Load(filepath.Join("testdata", name))
	require.NoError(t, err)
	return g
}

func TestParseRecordKinds(t *testing.T) {
	g := loadFixture(t, "launch.fire")
	require.Equal(t, 5, g.Len())

	want := []struct {
		kind     Kind
		typeName string
	}{
		{KindOpaque, "cc.SceneAsset"},
		{KindOpaque, "cc.Scene"},
		{KindNode, "cc.Node"},
		{KindComponent, "cc.Canvas"},
		{KindComponent, "cc.Widget"},
	}
	for i, w := range want {
		r, ok := g.At(i)
		require.True(t, ok)
		assert.Equal(t, w.kind, r.Kind(), "record %d", i)
		assert.Equal(t, w.typeName, r.TypeName(), "record %d", i)
	}

	canvas, ok := g.Node(2)
	require.True(t, ok)
	assert.Equal(t, "Canvas", canvas.Name)
	assert.Equal(t, &Ref{ID: 1}, canvas.Parent)
	assert.Empty(t, canvas.Children)
	assert.Equal(t, []Ref{{ID: 3}, {ID: 4}}, canvas.Components)

	widget := g.records[4].(*Component)
	assert.Equal(t, Ref{ID: 2}, widget.Owner)
	assert.True(t, widget.Enabled)
}

func TestGraphAccessors(t *testing.T) {
	g := loadFixture(t, "launch.fire")

	_, ok := g.At(-1)
	assert.False(t, ok)
	_, ok = g.At(5)
	assert.False(t, ok)

	_, ok = g.Node(3)
	assert.False(t, ok, "component record is not a node")

	assert.Equal(t, []string{"Canvas"}, g.Names())

	records := g.Records()
	records[0] = nil
	_, ok = g.At(0)
	assert.True(t, ok, "Records returns a copy")
}

func TestMarshalPreservesLayout(t *testing.T) {
	for _, name := range []string{"launch.fire", "checker.fire", "checker_empty.fire"} {
		t.Run(name, func(t *testing.T) {
			original, err := os.ReadFile(filepath.Join("testdata", name))
			require.NoError(t, err)

			g, err := Parse(original)
			require.NoError(t, err)

			out, err := Marshal(g)
			require.NoError(t, err)
			assert.Equal(t, string(bytes.TrimSpace(original)), string(out))
		})
	}
}

func TestRoundTripAfterInjection(t *testing.T) {
	g := loadFixture(t, "launch.fire")
	_, _, err := g.InjectComponentNode(2, "game.ScoreChecker", WithIDGenerator(func() string { return "auto-gen-abcdefghi" }))
	require.NoError(t, err)

	data, err := Marshal(g)
	require.NoError(t, err)

	reloaded, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, g, reloaded)

	again, err := Marshal(reloaded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestSaveAndLoad(t *testing.T) {
	g := loadFixture(t, "checker.fire")
	path := filepath.Join(t.TempDir(), "out.fire")

	require.NoError(t, Save(path, g))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, g, loaded)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{{`},
		{"object instead of array", `{"__type__": "cc.Node"}`},
		{"record not an object", `[1, 2]`},
		{"missing type", `[{"_name": "x"}]`},
		{"non-string type", `[{"__type__": 3}]`},
		{"bad parent", `[{"__type__": "cc.Node", "_parent": 4}]`},
		{"bad child list", `[{"__type__": "cc.Node", "_children": {"__id__": 1}}]`},
		{"reference without id", `[{"__type__": "cc.Node", "_components": [{"id": 1}]}]`},
		{"null child", `[{"__type__": "cc.Node", "_children": [null]}]`},
		{"bad enabled", `[{"__type__": "game.X", "node": {"__id__": 0}, "_enabled": "yes"}]`},
		{"bad name", `[{"__type__": "cc.Node", "_name": 7}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ParseError), "got %v", err)
		})
	}
}

func TestParseNullOwnerIsOpaque(t *testing.T) {
	g, err := Parse([]byte(`[{"__type__": "cc.ClickEvent", "node": null, "handler": "onClick"}]`))
	require.NoError(t, err)

	r, _ := g.At(0)
	assert.Equal(t, KindOpaque, r.Kind())

	out, err := Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"node": null`)
	assert.Contains(t, string(out), `"handler": "onClick"`)
}

func TestParseNonReferenceOwnerIsOpaque(t *testing.T) {
	input := `[{"__type__":"cc.SceneAsset"},{"__type__":"custom.Data","node":"root"},{"__type__":"custom.Slot","node":{"name":"x"},"index":2}]`

	g, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	for i, typeName := range []string{"custom.Data", "custom.Slot"} {
		r, _ := g.At(i + 1)
		assert.Equal(t, KindOpaque, r.Kind())
		assert.Equal(t, typeName, r.TypeName())
	}

	out, err := Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"node": "root"`)
	assert.Contains(t, string(out), `"name": "x"`)
	assert.Empty(t, g.Validate())
}

func TestMarshalDoesNotEscapeHTML(t *testing.T) {
	input := `[
  {
    "__type__": "cc.Node",
    "_name": "Title & <Logo>",
    "_parent": null,
    "_children": [],
    "_components": [
      {
        "__id__": 1
      }
    ]
  },
  {
    "__type__": "cc.RichText",
    "node": {
      "__id__": 0
    },
    "_enabled": true,
    "_string": "<b>Score</b> & more"
  }
]`

	g, err := Parse([]byte(input))
	require.NoError(t, err)

	out, err := Marshal(g)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
	assert.NotContains(t, string(out), `\u003c`)
	assert.NotContains(t, string(out), `\u0026`)
}

func TestMarshalKeepsNullLists(t *testing.T) {
	input := `[
  {
    "__type__": "cc.Scene",
    "_children": [
      {
        "__id__": 1
      }
    ]
  },
  {
    "__type__": "cc.Node",
    "_name": "Canvas",
    "_parent": {
      "__id__": 0
    },
    "_children": null,
    "_components": null
  }
]`

	g, err := Parse([]byte(input))
	require.NoError(t, err)

	out, err := Marshal(g)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))

	_, _, err = g.InjectComponentNode(1, "game.ScoreChecker")
	require.NoError(t, err)

	out, err = Marshal(g)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"_children": null`)
	assert.Contains(t, string(out), `"_components": null`)

	reloaded, err := Parse(out)
	require.NoError(t, err)
	canvas, ok := reloaded.Node(1)
	require.True(t, ok)
	assert.Equal(t, []Ref{{ID: 2}}, canvas.Children)
	assert.Empty(t, reloaded.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.fire"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.IOFailure))
}

func TestLoadParseErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.fire")
	require.NoError(t, os.WriteFile(path, []byte(`[{]`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ParseError))
	assert.Contains(t, err.Error(), path)
}
