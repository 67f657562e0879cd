package chimera

import (
	"sort"
	"strings"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// MapNode is a location vertex in a map graph. X and Y are abstract units used
// for rendering only; adjacency comes from Connections.
type MapNode struct {
	ID                    string   `json:"id" yaml:"id"`
	Name                  string   `json:"name" yaml:"name"`
	Description           string   `json:"description" yaml:"description"`
	X                     float64  `json:"x" yaml:"x"`
	Y                     float64  `json:"y" yaml:"y"`
	Connections           []string `json:"connections" yaml:"connections"`
	IsStartNode           bool     `json:"is_start_node,omitempty" yaml:"is_start_node,omitempty"`
	IsExitNode            bool     `json:"is_exit_node,omitempty" yaml:"is_exit_node,omitempty"`
	ExitLeadsToMapID      string   `json:"exit_leads_to_map_id,omitempty" yaml:"exit_leads_to_map_id,omitempty"`
	InteractableObjectIDs []string `json:"interactable_object_ids,omitempty" yaml:"interactable_object_ids,omitempty"`
}

// ConnectsTo reports whether id is listed among the node's connections
func (n *MapNode) ConnectsTo(id string) bool {
	for _, c := range n.Connections {
		if c == id {
			return true
		}
	}
	return false
}

// MapGraph is one traversable area
type MapGraph struct {
	ID                 string              `json:"id" yaml:"id"`
	Name               string              `json:"name" yaml:"name"`
	Nodes              map[string]*MapNode `json:"nodes" yaml:"nodes"`
	DefaultEntryNodeID string              `json:"default_entry_node_id" yaml:"default_entry_node_id"`
}

// Node returns the node with the given id
func (g *MapGraph) Node(id string) (*MapNode, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.Nodes[id]
	return n, ok
}

// FindNodeFold resolves id against the node table ignoring case. Node ids are
// not guaranteed to be normalized, so this is a scan rather than a key lookup.
func (g *MapGraph) FindNodeFold(id string) (*MapNode, bool) {
	if g == nil {
		return nil, false
	}
	if n, ok := g.Nodes[id]; ok {
		return n, true
	}
	for _, nodeID := range g.NodeIDs() {
		if strings.EqualFold(nodeID, id) {
			return g.Nodes[nodeID], true
		}
	}
	return nil, false
}

// NodeIDs returns node ids in sorted order
func (g *MapGraph) NodeIDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the structural invariants of the graph. Violations are data
// integrity problems in the map definition and are reported as DataLoss.
func (g *MapGraph) Validate() error {
	vb := errors.NewValidationBuilder()

	if g.ID == "" {
		vb.RequiredField("id")
	}
	if len(g.Nodes) == 0 {
		vb.Field("nodes", "must not be empty")
	}
	if _, ok := g.Nodes[g.DefaultEntryNodeID]; !ok {
		vb.Fieldf("default_entry_node_id", "%q is not a node", g.DefaultEntryNodeID)
	}

	for _, id := range g.NodeIDs() {
		node := g.Nodes[id]
		if node == nil {
			vb.Field("nodes."+id, "is nil")
			continue
		}
		if node.ID != id {
			vb.Fieldf("nodes."+id, "keyed under %q but has id %q", id, node.ID)
		}
		for _, c := range node.Connections {
			target, ok := g.Nodes[c]
			if !ok {
				vb.Fieldf("nodes."+id+".connections", "dangling reference %q", c)
				continue
			}
			if c == id {
				vb.Field("nodes."+id+".connections", "connects to itself")
				continue
			}
			if !target.ConnectsTo(id) {
				vb.Fieldf("nodes."+id+".connections", "%q does not connect back", c)
			}
		}
		if node.IsExitNode && node.ExitLeadsToMapID == "" {
			vb.Field("nodes."+id+".exit_leads_to_map_id", "is required on exit nodes")
		}
	}

	return vb.BuildWithCode(errors.CodeDataLoss)
}
