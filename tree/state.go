package tree

import "strconv"

// State is the caller-owned associative state threaded by value through
// every evaluation step. It is treated as copy-on-write: no accessor
// mutates the receiver, every write returns a new top-level map. Handlers
// must not retain a State reference beyond the TickResult they return.
//
// Two reserved sub-regions layer the memory model on top of the caller's
// own keys:
//
//   - WorkingMemoryKey: transient bindings scoped to one top-level Run
//     call, installed on entry and stripped on exit.
//   - NodeMemoryKey: per-node memory addressed by stable NodeID, persisting
//     across evaluations. The engine never evicts entries; the embedding
//     application owns the State's lifecycle.
type State map[string]any

// Reserved top-level State keys for the two memory regions.
const (
	WorkingMemoryKey = "__working__"
	NodeMemoryKey    = "__nodes__"
)

// clone returns a shallow copy of the top-level map.
func (s State) clone() State {
	out := make(State, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get returns the value stored under a top-level key.
func (s State) Get(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

// Set returns a new State with key bound to v. The receiver is unchanged.
func (s State) Set(key string, v any) State {
	out := s.clone()
	out[key] = v
	return out
}

// Delete returns a new State without key. The receiver is unchanged.
func (s State) Delete(key string) State {
	out := s.clone()
	delete(out, key)
	return out
}

// Lookup walks a path of keys through nested map[string]any values,
// starting at the top level. Missing segments report ok=false.
func (s State) Lookup(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur any = map[string]any(s)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			if st, isState := cur.(State); isState {
				m = map[string]any(st)
			} else {
				return nil, false
			}
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Working returns the working-memory region, or nil when no top-level
// evaluation is in progress. The returned map must not be mutated.
func (s State) Working() map[string]any {
	wm, _ := s[WorkingMemoryKey].(map[string]any)
	return wm
}

// WithWorking returns a new State with bindings installed as the working
// memory region. The bindings map is copied; nil installs an empty region.
func (s State) WithWorking(bindings map[string]any) State {
	wm := make(map[string]any, len(bindings))
	for k, v := range bindings {
		wm[k] = v
	}
	return s.Set(WorkingMemoryKey, wm)
}

// WithoutWorking returns a new State with the working-memory region
// stripped. Working memory never escapes one Run call.
func (s State) WithoutWorking() State {
	if _, ok := s[WorkingMemoryKey]; !ok {
		return s
	}
	return s.Delete(WorkingMemoryKey)
}

// nodeKey is the NodeMemory addressing key for an id. Decimal strings keep
// the region JSON round-trippable for persistence.
func nodeKey(id NodeID) string {
	return strconv.FormatInt(int64(id), 10)
}

// NodeMemory returns the memory for one node, or nil when the node has
// never written any. The returned map must not be mutated.
func (s State) NodeMemory(id NodeID) map[string]any {
	region, _ := s[NodeMemoryKey].(map[string]any)
	if region == nil {
		return nil
	}
	mem, _ := region[nodeKey(id)].(map[string]any)
	return mem
}

// WithNodeMemory returns a new State with mem stored as the memory for one
// node. Both the region and the receiver's top level are copied.
func (s State) WithNodeMemory(id NodeID, mem map[string]any) State {
	old, _ := s[NodeMemoryKey].(map[string]any)
	region := make(map[string]any, len(old)+1)
	for k, v := range old {
		region[k] = v
	}
	region[nodeKey(id)] = mem
	return s.Set(NodeMemoryKey, region)
}
