// Copyright 2022 Sogang University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package quadtree implements an in-memory region quadtree that tracks a
// non-negative load counter per leaf.
//
// The tree covers a fixed rectangle.  Leaves hold load; internal nodes hold
// exactly four children, one per quadrant, and no load.  A leaf becomes
// internal via Subdivide, which spreads the leaf's load evenly over its new
// children, and an internal node whose children are all leaves becomes a leaf
// again via Merge, which sums the children's load back into it.  Neither
// operation ever discards load.
//
// Nodes are stored in an arena and addressed by NodeID.  The four children of
// a node are allocated as one contiguous block, and each node keeps the ID of
// its parent as a plain index, so the parent link never owns anything.  Blocks
// released by Merge are recycled through a free list, much like the node free
// list of a B-tree.
//
// Traversals are iterative with an explicit stack.
//
// Tree is not safe for concurrent use; callers must provide their own
// synchronization.
package quadtree

// NodeID identifies a node within its tree.
type NodeID int32

// None is the NodeID of a missing node, e.g., the parent of the root.
const None NodeID = -1

// Root is the NodeID of the root, which exists for the lifetime of the tree.
const Root NodeID = 0

const DefaultFreeListSize = 32

// node represents one axis-aligned cell of the partition.
type node struct {
	bounds   Bounds
	level    int
	load     float64
	parent   NodeID
	children NodeID // first of four contiguous children, or None for leaves
}

// Leaf is an immutable copy of a leaf taken at some instant.
type Leaf struct {
	Bounds Bounds
	Level  int
	Load   float64
}

// LeafIterator allows callers of AscendLeaves to iterate over the leaves of
// the tree.  When this function returns false, iteration will stop and
// AscendLeaves will immediately return.
type LeafIterator func(id NodeID) bool

// Tree is a region quadtree with a load counter on each leaf.
type Tree struct {
	nodes    []node
	freelist []NodeID
	leaves   int
}

// New creates a new tree consisting of a single empty leaf covering the given
// bounds.
func New(bounds Bounds) *Tree {
	if !bounds.Valid() {
		panic("bad bounds")
	}
	t := &Tree{
		nodes:    make([]node, 1, 1+4*DefaultFreeListSize),
		freelist: make([]NodeID, 0, DefaultFreeListSize),
		leaves:   1,
	}
	t.nodes[Root] = node{
		bounds:   bounds,
		parent:   None,
		children: None,
	}
	return t
}

// newBlock returns the ID of the first node of a block of four, reusing a
// released block when one is available.
func (t *Tree) newBlock() (id NodeID) {
	index := len(t.freelist) - 1
	if index < 0 {
		id = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, node{}, node{}, node{}, node{})
		return
	}
	id = t.freelist[index]
	t.freelist = t.freelist[:index]
	return
}

// freeBlock releases the block of four starting at the given ID.
func (t *Tree) freeBlock(id NodeID) {
	for q := NodeID(0); q < 4; q++ {
		t.nodes[id+q] = node{parent: None, children: None}
	}
	t.freelist = append(t.freelist, id)
}

// IsLeaf reports whether the given node has no children.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.nodes[id].children == None
}

// Contains tests whether the given node's bounds contain the given point.
func (t *Tree) Contains(id NodeID, x, y float64) bool {
	return t.nodes[id].bounds.Contains(x, y)
}

// Bounds returns the bounds of the given node.
func (t *Tree) Bounds(id NodeID) Bounds {
	return t.nodes[id].bounds
}

// Level returns the depth of the given node; the root is at level 0.
func (t *Tree) Level(id NodeID) int {
	return t.nodes[id].level
}

// Load returns the load of the given node.  This is always 0 for internal
// nodes.
func (t *Tree) Load(id NodeID) float64 {
	return t.nodes[id].load
}

// Parent returns the parent of the given node.  ok is false for the root.
func (t *Tree) Parent(id NodeID) (parent NodeID, ok bool) {
	parent = t.nodes[id].parent
	return parent, parent != None
}

// Child returns the child of the given internal node at the given quadrant.
func (t *Tree) Child(id NodeID, q Quadrant) NodeID {
	children := t.nodes[id].children
	if children == None {
		panic("child of leaf")
	}
	return children + NodeID(q)
}

// AddLoad adds delta to the load of the given leaf and returns the new load.
// The load is clamped at 0.
func (t *Tree) AddLoad(id NodeID, delta float64) float64 {
	n := &t.nodes[id]
	if n.children != None {
		panic("load on internal node")
	}
	n.load = max(n.load+delta, 0.)
	return n.load
}

// Subdivide turns the given leaf into an internal node with four children at
// the next level.  The leaf's load is distributed evenly across the children
// and its own load becomes 0.
func (t *Tree) Subdivide(id NodeID) {
	if !t.IsLeaf(id) {
		panic("subdivide internal node")
	}
	// newBlock may grow the arena, so no pointer into it is taken beforehand
	children := t.newBlock()
	n := &t.nodes[id]
	load := n.load / 4.
	for q := LowerLeft; q <= UpperRight; q++ {
		t.nodes[children+NodeID(q)] = node{
			bounds:   n.bounds.Quadrant(q),
			level:    n.level + 1,
			load:     load,
			parent:   id,
			children: None,
		}
	}
	n.children = children
	n.load = 0.
	t.leaves += 3
}

// CanMerge reports whether the given node is internal, all four of its
// children are leaves, and the children's total load is strictly less than
// the given threshold.  Children that are themselves internal block the merge,
// so a merge never collapses more than one level at a time.
func (t *Tree) CanMerge(id NodeID, threshold float64) bool {
	children := t.nodes[id].children
	if children == None {
		return false
	}
	block := t.nodes[children : children+4]
	for _, child := range block {
		if child.children != None {
			return false
		}
	}
	return sum(block) < threshold
}

// Merge turns the given internal node back into a leaf whose load is the sum
// of its children's loads.  The caller is responsible for checking CanMerge
// beforehand; merging a node with internal children panics.
func (t *Tree) Merge(id NodeID) {
	n := &t.nodes[id]
	if n.children == None {
		panic("merge leaf")
	}
	block := t.nodes[n.children : n.children+4]
	for _, child := range block {
		if child.children != None {
			panic("merge node with internal children")
		}
	}
	load := sum(block)
	t.freeBlock(n.children)
	n.children = None
	n.load = load
	t.leaves -= 3
}

// sum returns the total load of the given nodes.
func sum(nodes []node) (sum float64) {
	for _, n := range nodes {
		sum += n.load
	}
	return
}

// FindLeaf descends from the root to the leaf containing the given point.  At
// each internal node the child is selected by comparing the point against the
// node's midpoint, which is also how the children's bounds were derived;
// descent therefore always ends at a leaf.  Points outside the root's bounds
// are attributed to the nearest quadrant at each level.
func (t *Tree) FindLeaf(x, y float64) NodeID {
	id := Root
	for {
		n := &t.nodes[id]
		if n.children == None {
			return id
		}
		id = n.children + NodeID(n.bounds.QuadrantOf(x, y))
	}
}

// AscendLeaves calls the iterator for every leaf, visiting quadrants in
// order, until all leaves have been visited or the iterator returns false.
func (t *Tree) AscendLeaves(iterator LeafIterator) {
	stack := make([]NodeID, 1, DefaultFreeListSize)
	stack[0] = Root
	for 0 < len(stack) {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if children := t.nodes[id].children; children != None {
			// push in reverse so that LowerLeft is visited first
			for q := UpperRight; LowerLeft <= q; q-- {
				stack = append(stack, children+NodeID(q))
			}
			continue
		}
		if !iterator(id) {
			return
		}
	}
}

// Leaves returns a snapshot of all current leaves.
func (t *Tree) Leaves() []Leaf {
	leaves := make([]Leaf, 0, t.leaves)
	t.AscendLeaves(func(id NodeID) bool {
		n := &t.nodes[id]
		leaves = append(leaves, Leaf{Bounds: n.bounds, Level: n.level, Load: n.load})
		return true
	})
	return leaves
}

// Decay multiplies the load of every leaf by the given factor, which must lie
// in (0, 1].  Any resulting load below floor is set to exactly 0.
func (t *Tree) Decay(factor, floor float64) {
	if !(0 < factor && factor <= 1) {
		panic("bad factor")
	}
	t.AscendLeaves(func(id NodeID) bool {
		n := &t.nodes[id]
		n.load *= factor
		if n.load < floor {
			n.load = 0.
		}
		return true
	})
}

// MergeAll visits every internal node in post-order and merges each one for
// which CanMerge holds.  Children are visited before their parent, hence a
// merge at one level can make the parent eligible within the same sweep.  This
// returns the number of merges performed.
func (t *Tree) MergeAll(threshold float64) (merges int) {
	type frame struct {
		id       NodeID
		expanded bool
	}
	stack := make([]frame, 1, DefaultFreeListSize)
	stack[0] = frame{id: Root}
	for 0 < len(stack) {
		top := stack[len(stack)-1]
		children := t.nodes[top.id].children
		if children == None {
			stack = stack[:len(stack)-1]
			continue
		}
		if !top.expanded {
			stack[len(stack)-1].expanded = true
			for q := UpperRight; LowerLeft <= q; q-- {
				stack = append(stack, frame{id: children + NodeID(q)})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		if t.CanMerge(top.id, threshold) {
			t.Merge(top.id)
			merges++
		}
	}
	return
}

// Len returns the number of nodes currently in the tree.
func (t *Tree) Len() int {
	return len(t.nodes) - 4*len(t.freelist)
}

// LeafCount returns the number of leaves currently in the tree.
func (t *Tree) LeafCount() int {
	return t.leaves
}

// Depth returns the maximum level of any node.  Released nodes are reset to
// level 0 and therefore never affect the result.
func (t *Tree) Depth() (depth int) {
	for id := range t.nodes {
		depth = max(depth, t.nodes[id].level)
	}
	return
}
