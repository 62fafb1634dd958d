// Package compiler validates and prepares raw tree literals for repeated
// execution: it consults the node type registry for per-tag validation
// specs, resolves deferred option references against a caller-supplied
// function table, and assigns stable node identities. Compilation is
// all-or-nothing; any violation aborts with a structured Error.
package compiler

import (
	"fmt"

	"github.com/arborlogic/arbor/engine"
	"github.com/arborlogic/arbor/tree"
)

// idOptionKey is the config key carrying an author-supplied identity.
// It is consumed by the compiler, not exposed as a node option.
const idOptionKey = "id"

// Compiler turns literals into compiled trees against one registry and
// one function table.
type Compiler struct {
	reg   *engine.Registry
	funcs FuncTable
	ids   *Sequence
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithSequence injects the identity sequence. Compilers sharing a
// Sequence keep auto-assigned identities unique across each other;
// the default is the process-wide DefaultSequence.
func WithSequence(s *Sequence) Option {
	return func(c *Compiler) {
		c.ids = s
	}
}

// New creates a Compiler. funcs may be nil when no tree uses call
// references.
func New(reg *engine.Registry, funcs FuncTable, opts ...Option) *Compiler {
	c := &Compiler{
		reg:   reg,
		funcs: funcs,
		ids:   DefaultSequence,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile walks the literal depth-first and produces the compiled tree.
// The fixed parent-before-children order makes identity assignment
// deterministic for a given literal. The literal is not retained.
func (c *Compiler) Compile(lit tree.Literal) (*tree.Node, error) {
	return c.compileNode(lit, lit.Tag)
}

// compileNode compiles one node; path locates it for error reporting.
func (c *Compiler) compileNode(lit tree.Literal, path string) (*tree.Node, error) {
	if err := lit.Invalid(); err != nil {
		return nil, errf(ErrMalformedLiteral, path, "%v", err)
	}
	if lit.Tag == "" {
		return nil, errf(ErrMalformedLiteral, path, "node tag is empty")
	}

	spec, known := c.reg.Spec(lit.Tag)
	if !known {
		return nil, errf(ErrUnknownTag, path, "tag %q has no registered node type", lit.Tag)
	}

	id, cfg, err := c.nodeIdentity(lit.Config, path)
	if err != nil {
		return nil, err
	}

	options, err := c.resolveOptions(cfg, path)
	if err != nil {
		return nil, err
	}
	for _, required := range spec.Options {
		if _, present := options[required]; !present {
			return nil, errf(ErrMissingOption, path, "tag %q requires option %q", lit.Tag, required)
		}
	}

	if !spec.Children.Allows(len(lit.Children)) {
		return nil, errf(ErrChildCount, path, "tag %q wants %s children, got %d",
			lit.Tag, spec.Children.String(), len(lit.Children))
	}

	node := &tree.Node{
		Tag:      lit.Tag,
		ID:       id,
		Options:  options,
		Children: make([]*tree.Node, 0, len(lit.Children)),
	}
	for i, childLit := range lit.Children {
		childPath := fmt.Sprintf("%s/%s[%d]", path, childLit.Tag, i)
		child, err := c.compileNode(childLit, childPath)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// nodeIdentity assigns the node's identity: an explicitly supplied "id"
// config entry is used verbatim and never overwritten by auto-assignment;
// otherwise the next identity is drawn from the sequence. The returned
// config has the id entry stripped — identity is not an option.
func (c *Compiler) nodeIdentity(cfg map[string]any, path string) (tree.NodeID, map[string]any, error) {
	raw, explicit := cfg[idOptionKey]
	if !explicit {
		return c.ids.Next(), cfg, nil
	}

	var id int64
	switch v := raw.(type) {
	case int:
		id = int64(v)
	case int64:
		id = v
	case float64:
		id = int64(v)
		if float64(id) != v {
			return 0, nil, errf(ErrInvalidID, path, "id %v is not an integer", v)
		}
	default:
		return 0, nil, errf(ErrInvalidID, path, "id is %T, want a positive integer", raw)
	}
	if id <= 0 {
		return 0, nil, errf(ErrInvalidID, path, "id %d is not positive", id)
	}

	rest := make(map[string]any, len(cfg)-1)
	for k, v := range cfg {
		if k != idOptionKey {
			rest[k] = v
		}
	}
	return tree.NodeID(id), rest, nil
}
