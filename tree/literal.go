package tree

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Literal is the author-facing, ephemeral form of a tree node. The wire
// shape is an ordered list [tag, config?, child*]: a symbolic tag, an
// optional associative config object, then zero or more child literals of
// the same shape. Literals are authored once, consumed by compilation, then
// discarded.
type Literal struct {
	Tag      string
	Config   map[string]any
	Children []Literal

	// invalid records a shape violation detected during construction.
	// Compilation surfaces it as a malformed-literal error.
	invalid error
}

// Invalid returns the shape violation recorded during construction, if any.
func (l Literal) Invalid() error {
	return l.invalid
}

// New builds a Literal in Go code. The variadic tail mirrors the wire
// shape: an optional map[string]any config first, then child Literals.
//
//	tree.New("loop", map[string]any{"count": 4},
//		tree.New("sequence",
//			tree.New("counter!", map[string]any{"key": "foo"}),
//			tree.New("less-than?", map[string]any{"key": "foo", "val": 5})))
func New(tag string, rest ...any) Literal {
	l := Literal{Tag: tag}
	for i, arg := range rest {
		switch v := arg.(type) {
		case map[string]any:
			if l.Config != nil {
				l.invalid = fmt.Errorf("node %q: duplicate config object", tag)
			} else if len(l.Children) > 0 {
				l.invalid = fmt.Errorf("node %q: config object must precede children", tag)
			} else {
				l.Config = v
			}
		case Literal:
			l.Children = append(l.Children, v)
		default:
			l.invalid = fmt.Errorf("node %q: argument %d is %T, want map[string]any or tree.Literal", tag, i, arg)
		}
		if l.invalid != nil {
			return l
		}
	}
	return l
}

// UnmarshalYAML decodes the [tag, config?, child*] wire shape.
func (l *Literal) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: tree node must be a sequence [tag, config?, child*], got %s", value.Line, yamlKind(value.Kind))
	}
	if len(value.Content) == 0 {
		return fmt.Errorf("line %d: tree node is empty, want at least a tag", value.Line)
	}

	head := value.Content[0]
	if head.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: tree node tag must be a scalar, got %s", head.Line, yamlKind(head.Kind))
	}
	if err := head.Decode(&l.Tag); err != nil {
		return fmt.Errorf("line %d: decode tag: %w", head.Line, err)
	}
	if l.Tag == "" {
		return fmt.Errorf("line %d: tree node tag is empty", head.Line)
	}

	tail := value.Content[1:]
	if len(tail) > 0 && tail[0].Kind == yaml.MappingNode {
		if err := tail[0].Decode(&l.Config); err != nil {
			return fmt.Errorf("line %d: decode config for %q: %w", tail[0].Line, l.Tag, err)
		}
		tail = tail[1:]
	}

	l.Children = make([]Literal, 0, len(tail))
	for _, childNode := range tail {
		var child Literal
		if err := child.UnmarshalYAML(childNode); err != nil {
			return err
		}
		l.Children = append(l.Children, child)
	}
	return nil
}

// Load reads one tree literal from r. JSON input works too; YAML is a
// superset.
func Load(r io.Reader) (Literal, error) {
	var l Literal
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&l); err != nil {
		return Literal{}, fmt.Errorf("decode tree literal: %w", err)
	}
	return l, nil
}

// LoadFile reads one tree literal from a YAML file.
func LoadFile(path string) (Literal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Literal{}, fmt.Errorf("open tree file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// yamlKind names a yaml.Kind for error messages.
func yamlKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
