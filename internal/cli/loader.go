package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/arborlogic/arbor/behaviors"
	"github.com/arborlogic/arbor/compiler"
	"github.com/arborlogic/arbor/engine"
	"github.com/arborlogic/arbor/tree"
)

// newRegistry builds the registry the CLI compiles and evaluates against:
// the built-in control nodes plus the example leaf behaviors.
func newRegistry() (*engine.Registry, error) {
	reg := engine.Builtins()
	if err := behaviors.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// cliFuncs is the function table available to trees compiled by the CLI.
// Embedding applications supply their own tables; these two cover the
// common cases for data-file trees.
func cliFuncs() compiler.FuncTable {
	return compiler.FuncTable{
		"now": func(args ...any) (any, error) {
			return time.Now().Unix(), nil
		},
		"env": func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("env wants 1 argument, got %d", len(args))
			}
			name, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("env argument is %T, want string", args[0])
			}
			return os.Getenv(name), nil
		},
	}
}

// compileTree loads and compiles a tree file against the CLI registry.
func compileTree(path string) (*tree.Node, error) {
	lit, err := tree.LoadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}
	return compiler.New(reg, cliFuncs()).Compile(lit)
}
