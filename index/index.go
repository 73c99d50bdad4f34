// Package index builds tag-keyed hierarchical lookup trees over
// discovered resources.
package index

import (
	"encoding/json"

	"github.com/yairfalse/awsvars/types"
)

// Node is one level of a hierarchical index. A node is either a branch
// (keyed children) or a leaf (ordered resource ids); the depth of the
// tree is region plus the tag schema length. Leaves preserve insertion
// order and are never sorted.
type Node struct {
	branches map[string]*Node
	leaf     []string
}

// NewNode returns an empty branch node.
func NewNode() *Node {
	return &Node{branches: make(map[string]*Node)}
}

// Insert appends id at the end of the leaf reached by path, creating
// intermediate branches on demand.
func (n *Node) Insert(path []string, id string) {
	if len(path) == 0 {
		n.leaf = append(n.leaf, id)
		return
	}
	if n.branches == nil {
		n.branches = make(map[string]*Node)
	}
	child, ok := n.branches[path[0]]
	if !ok {
		child = &Node{}
		n.branches[path[0]] = child
	}
	child.Insert(path[1:], id)
}

// Lookup descends the tree along path and returns the leaf ids, or nil
// when the path does not exist.
func (n *Node) Lookup(path ...string) []string {
	cur := n
	for _, key := range path {
		child, ok := cur.branches[key]
		if !ok {
			return nil
		}
		cur = child
	}
	return cur.leaf
}

// Branch returns the child node for key, or nil.
func (n *Node) Branch(key string) *Node {
	return n.branches[key]
}

// Len returns the number of direct branches.
func (n *Node) Len() int {
	return len(n.branches)
}

// MarshalJSON renders branches as a nested object and leaves as an id
// array, matching the shape consumers index into.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.leaf != nil {
		return json.Marshal(n.leaf)
	}
	if n.branches == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(n.branches)
}

// UnmarshalJSON restores a node from its marshaled form.
func (n *Node) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &n.leaf)
	}
	return json.Unmarshal(data, &n.branches)
}

// Build turns a flat resource list and an ordered tag-key schema into
// a hierarchical index: region, then each schema tag's value in schema
// order, down to a leaf of resource ids in fetch order.
//
// Resources missing any schema key are excluded from the index (they
// stay in the flat resource map). A nil or empty schema produces no
// index at all, which is distinct from a schema with zero matches — the
// latter yields an empty tree.
func Build(resources []types.Resource, schema []string) *Node {
	if len(schema) == 0 {
		return nil
	}

	root := NewNode()
	for _, r := range resources {
		values, ok := tagPath(r, schema)
		if !ok {
			continue
		}
		path := make([]string, 0, len(values)+1)
		path = append(path, r.Region)
		path = append(path, values...)
		root.Insert(path, r.ID)
	}
	return root
}

// tagPath extracts the schema tag values in schema order. Reports
// false if any key is missing.
func tagPath(r types.Resource, schema []string) ([]string, bool) {
	values := make([]string, 0, len(schema))
	for _, key := range schema {
		v, ok := r.Tags[key]
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}
