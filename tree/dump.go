package tree

import (
	"encoding/json"
	"fmt"
)

// dumpNode is the serializable rendering of a compiled node. Maps marshal
// with sorted keys, so output is deterministic for a given tree.
type dumpNode struct {
	ID       int64                 `json:"id"`
	Tag      string                `json:"tag"`
	Options  map[string]dumpOption `json:"options,omitempty"`
	Children []dumpNode            `json:"children,omitempty"`
}

// dumpOption renders an Option as either {"concrete": value} or
// {"deferred": kind}. Deferred resolver closures are never serialized;
// only their binding kind is recorded.
type dumpOption struct {
	opt Option
}

func (d dumpOption) MarshalJSON() ([]byte, error) {
	switch o := d.opt.(type) {
	case Concrete:
		return json.Marshal(map[string]any{"concrete": o.Value})
	case Deferred:
		return json.Marshal(map[string]any{"deferred": string(o.Kind)})
	default:
		return nil, fmt.Errorf("unknown option type %T", d.opt)
	}
}

func buildDump(n *Node) dumpNode {
	out := dumpNode{ID: int64(n.ID), Tag: n.Tag}
	if len(n.Options) > 0 {
		out.Options = make(map[string]dumpOption, len(n.Options))
		for k, opt := range n.Options {
			out.Options[k] = dumpOption{opt: opt}
		}
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, buildDump(child))
	}
	return out
}

// Dump renders the compiled subtree rooted at n as deterministic, indented
// JSON, terminated by a newline. Concrete option values appear verbatim;
// deferred options appear as their binding kind.
func (n *Node) Dump() ([]byte, error) {
	b, err := json.MarshalIndent(buildDump(n), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("dump node %d: %w", n.ID, err)
	}
	return append(b, '\n'), nil
}
