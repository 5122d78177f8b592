package scene

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/scenepatch/scenepatch/internal/errors"
	"github.com/scenepatch/scenepatch/internal/utils"
)

// Parse decodes a serialized scene
func Parse(data []byte) (*Graph, error) {
	return parse(data, "")
}

func parse(data []byte, subject string) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(errors.ParseError, subject, err)
	}
	return &g, nil
}

// Load reads a scene file
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.IOFailure, path, err)
	}
	return parse(data, path)
}

// Marshal encodes g as JSON indented with two spaces. Record keys keep the
// order they were loaded or created with and strings are not HTML-escaped.
func Marshal(g *Graph) ([]byte, error) {
	compact, err := encodeJSON(g)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Save rewrites the scene file at path with the full graph
func Save(path string, g *Graph) error {
	data, err := Marshal(g)
	if err != nil {
		return errors.Wrap(errors.IOFailure, path, err)
	}
	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return errors.Wrap(errors.IOFailure, path, err)
	}
	return nil
}
