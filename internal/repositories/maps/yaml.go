package maps

import (
	"embed"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// StartMapID is the graph new sessions begin on
const StartMapID = "TP_MAP"

//go:embed data/*.yaml
var builtin embed.FS

// LoadBuiltin returns a repository of the maps shipped with the binary
func LoadBuiltin() (*InMemoryRepository, error) {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded map data")
	}
	return LoadFS(sub)
}

// LoadFS parses every *.yaml file at the root of fsys as one MapGraph. Node ids
// default to their key in the nodes table.
func LoadFS(fsys fs.FS) (*InMemoryRepository, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list map files")
	}
	sort.Strings(names)

	graphs := make([]*chimera.MapGraph, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", name)
		}
		g, err := Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path.Base(name))
		}
		graphs = append(graphs, g)
	}

	return NewInMemory(graphs...)
}

// Parse decodes a single YAML map document without validating it
func Parse(raw []byte) (*chimera.MapGraph, error) {
	var g chimera.MapGraph
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "malformed map document")
	}
	for id, node := range g.Nodes {
		if node == nil {
			continue
		}
		if node.ID == "" {
			node.ID = id
		}
	}
	return &g, nil
}
