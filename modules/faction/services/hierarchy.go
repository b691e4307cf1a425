package services

import (
	"github.com/google/uuid"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
)

// Tree is an adjacency snapshot of one organization's live factions,
// built from a single edge query at the start of an operation and
// discarded with it. Traversal is iterative with explicit stacks; a
// visited-set guard turns a corrupted (cyclic) store into an error
// instead of a hang.
type Tree struct {
	parents  map[uuid.UUID]*uuid.UUID
	children map[uuid.UUID][]uuid.UUID
}

func NewTree(edges []faction.Edge) *Tree {
	t := &Tree{
		parents:  make(map[uuid.UUID]*uuid.UUID, len(edges)),
		children: make(map[uuid.UUID][]uuid.UUID, len(edges)),
	}
	for _, e := range edges {
		t.parents[e.ID] = e.ParentID
		if e.ParentID != nil {
			t.children[*e.ParentID] = append(t.children[*e.ParentID], e.ID)
		}
	}
	return t
}

// Contains reports whether the node is part of the live snapshot.
func (t *Tree) Contains(id uuid.UUID) bool {
	_, ok := t.parents[id]
	return ok
}

// Depth counts parent hops from the node to its root. Root depth is 0.
func (t *Tree) Depth(id uuid.UUID) (int, error) {
	depth := 0
	visited := map[uuid.UUID]struct{}{id: {}}
	current := id
	for {
		parent, ok := t.parents[current]
		if !ok || parent == nil {
			return depth, nil
		}
		if _, seen := visited[*parent]; seen {
			return 0, &faction.CycleError{NodeID: *parent}
		}
		visited[*parent] = struct{}{}
		depth++
		current = *parent
	}
}

// RootOf follows parent pointers to the node with no parent.
func (t *Tree) RootOf(id uuid.UUID) (uuid.UUID, error) {
	visited := map[uuid.UUID]struct{}{id: {}}
	current := id
	for {
		parent, ok := t.parents[current]
		if !ok || parent == nil {
			return current, nil
		}
		if _, seen := visited[*parent]; seen {
			return uuid.Nil, &faction.CycleError{NodeID: *parent}
		}
		visited[*parent] = struct{}{}
		current = *parent
	}
}

// DescendantIDs expands the node into its transitive children. The
// returned set carries no ordering guarantee; callers needing stable
// order sort explicitly. An id outside the snapshot yields an empty
// set. Each node hangs off exactly one parent, so reaching a node
// twice means the store is cyclic and the walk aborts.
func (t *Tree) DescendantIDs(id uuid.UUID, includeSelf bool) ([]uuid.UUID, error) {
	if !t.Contains(id) {
		return nil, nil
	}

	out := make([]uuid.UUID, 0, 8)
	visited := make(map[uuid.UUID]struct{})
	stack := []uuid.UUID{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			return nil, &faction.CycleError{NodeID: current}
		}
		visited[current] = struct{}{}
		if current != id || includeSelf {
			out = append(out, current)
		}
		stack = append(stack, t.children[current]...)
	}
	return out, nil
}

// DirectChildren returns the node's immediate live children.
func (t *Tree) DirectChildren(id uuid.UUID) []uuid.UUID {
	return t.children[id]
}

// Height is the longest downward path from the node to a leaf, in
// hops. A leaf has height 0.
func (t *Tree) Height(id uuid.UUID) (int, error) {
	if !t.Contains(id) {
		return 0, nil
	}

	type frame struct {
		id    uuid.UUID
		depth int
	}
	height := 0
	visited := make(map[uuid.UUID]struct{})
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current.id]; seen {
			return 0, &faction.CycleError{NodeID: current.id}
		}
		visited[current.id] = struct{}{}
		if current.depth > height {
			height = current.depth
		}
		for _, child := range t.children[current.id] {
			stack = append(stack, frame{id: child, depth: current.depth + 1})
		}
	}
	return height, nil
}
