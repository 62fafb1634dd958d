package engine

import (
	"errors"
	"fmt"

	"github.com/arborlogic/arbor/tree"
)

// DispatchError reports an attempt to tick a node whose tag has no
// registered handler. It is fatal to the enclosing Run call: the engine
// has no default behavior to substitute.
type DispatchError struct {
	Tag    string
	NodeID tree.NodeID
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch: no handler registered for tag %q (node %d)", e.Tag, e.NodeID)
}

// IsDispatchError reports whether err is (or wraps) a DispatchError.
func IsDispatchError(err error) bool {
	var de *DispatchError
	return errors.As(err, &de)
}
