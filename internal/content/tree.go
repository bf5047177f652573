package content

import "fmt"

// InsertNode adds node as a child of parentID at the given position.
// The parent must exist and be a canvas type, the node's ID must be new,
// and index must lie in [0, childCount]; out-of-range indexes are
// rejected rather than clamped. On failure the tree is unchanged.
func (p *PageContent) InsertNode(parentID NodeID, node Node, index int) error {
	parent := p.Node(parentID)
	if parent == nil {
		return fmt.Errorf("%w: parent %q does not exist", ErrInvalidMutation, parentID)
	}
	if !IsCanvasType(parent.Type) {
		return fmt.Errorf("%w: parent %q (%s) cannot hold children", ErrInvalidMutation, parentID, parent.Type)
	}
	if node.ID == "" || node.ID == RootID {
		return fmt.Errorf("%w: node ID %q is reserved or empty", ErrInvalidMutation, node.ID)
	}
	if p.Node(node.ID) != nil {
		return fmt.Errorf("%w: node %q already exists", ErrInvalidMutation, node.ID)
	}
	if index < 0 || index > len(parent.Nodes) {
		return fmt.Errorf("%w: index %d outside [0, %d]", ErrInvalidMutation, index, len(parent.Nodes))
	}

	node.Parent = parentID
	inserted := node
	p.Nodes[node.ID] = &inserted
	parent.Nodes = insertID(parent.Nodes, node.ID, index)
	return nil
}

// RemoveNode deletes the node and its entire subtree. The root cannot
// be removed.
func (p *PageContent) RemoveNode(id NodeID) error {
	if id == RootID {
		return fmt.Errorf("%w: the root node cannot be removed", ErrInvalidMutation)
	}
	node := p.Node(id)
	if node == nil {
		return fmt.Errorf("%w: node %q does not exist", ErrInvalidMutation, id)
	}

	if parent := p.Node(node.Parent); parent != nil {
		parent.Nodes = removeID(parent.Nodes, id)
	}
	for _, victim := range p.subtree(id) {
		delete(p.Nodes, victim)
	}
	return nil
}

// MoveNode reparents a node, placing it at newIndex among the new
// parent's children. Moves that would detach the root, target a
// non-canvas parent, or create a cycle (newParentID being the node
// itself or one of its descendants) are rejected with the tree left
// exactly as it was; the removal and reinsertion are not observable
// separately.
func (p *PageContent) MoveNode(id, newParentID NodeID, newIndex int) error {
	if id == RootID {
		return fmt.Errorf("%w: the root node cannot be moved", ErrInvalidMutation)
	}
	node := p.Node(id)
	if node == nil {
		return fmt.Errorf("%w: node %q does not exist", ErrInvalidMutation, id)
	}
	newParent := p.Node(newParentID)
	if newParent == nil {
		return fmt.Errorf("%w: parent %q does not exist", ErrInvalidMutation, newParentID)
	}
	if !IsCanvasType(newParent.Type) {
		return fmt.Errorf("%w: parent %q (%s) cannot hold children", ErrInvalidMutation, newParentID, newParent.Type)
	}
	if newParentID == id || p.isDescendant(newParentID, id) {
		return fmt.Errorf("%w: moving %q under %q would create a cycle", ErrInvalidMutation, id, newParentID)
	}

	// The insertion position is validated against the child list as it
	// will look after the node leaves its old slot.
	limit := len(newParent.Nodes)
	if node.Parent == newParentID {
		limit--
	}
	if newIndex < 0 || newIndex > limit {
		return fmt.Errorf("%w: index %d outside [0, %d]", ErrInvalidMutation, newIndex, limit)
	}

	// All checks passed; mutate in one go.
	if oldParent := p.Node(node.Parent); oldParent != nil {
		oldParent.Nodes = removeID(oldParent.Nodes, id)
	}
	newParent.Nodes = insertID(newParent.Nodes, id, newIndex)
	node.Parent = newParentID
	return nil
}

// UpdateNodeProps shallow-merges patch into the node's prop bag. Keys
// this layer does not understand are stored untouched so newer block
// schemas keep working against older server builds.
func (p *PageContent) UpdateNodeProps(id NodeID, patch map[string]any) error {
	node := p.Node(id)
	if node == nil {
		return fmt.Errorf("%w: node %q does not exist", ErrInvalidMutation, id)
	}
	if len(patch) == 0 {
		return nil
	}
	if node.Props == nil {
		node.Props = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		node.Props[k] = v
	}
	return nil
}

// Validate checks the structural invariants the mutation API maintains:
// every listed child exists and points back at its parent, no child is
// listed twice, and every node in the arena is reachable from the root.
// It is run before a builder save is persisted.
func (p *PageContent) Validate() error {
	if p.Empty() {
		return nil
	}
	root := p.Root()
	if root == nil {
		return fmt.Errorf("%w: node map has entries but no root", ErrInvalidFormat)
	}

	seen := map[NodeID]int{RootID: 1}
	queue := []NodeID{RootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node := p.Node(id)
		for _, childID := range node.Nodes {
			child := p.Node(childID)
			if child == nil {
				return fmt.Errorf("%w: %q lists missing child %q", ErrInvalidFormat, id, childID)
			}
			if child.Parent != id {
				return fmt.Errorf("%w: %q has parent %q but is listed under %q", ErrInvalidFormat, childID, child.Parent, id)
			}
			seen[childID]++
			if seen[childID] > 1 {
				return fmt.Errorf("%w: %q is listed as a child more than once", ErrInvalidFormat, childID)
			}
			queue = append(queue, childID)
		}
	}
	if len(seen) != len(p.Nodes) {
		return fmt.Errorf("%w: %d of %d nodes are unreachable from the root", ErrInvalidFormat, len(p.Nodes)-len(seen), len(p.Nodes))
	}
	return nil
}

// subtree returns id plus all its descendants, following child lists.
func (p *PageContent) subtree(id NodeID) []NodeID {
	out := []NodeID{id}
	for i := 0; i < len(out); i++ {
		if node := p.Node(out[i]); node != nil {
			out = append(out, node.Nodes...)
		}
	}
	return out
}

// isDescendant walks candidate's ancestor chain looking for ancestor.
// The walk is bounded by the arena size so a corrupt parent chain cannot
// loop forever.
func (p *PageContent) isDescendant(candidate, ancestor NodeID) bool {
	current := candidate
	for steps := 0; steps <= len(p.Nodes); steps++ {
		node := p.Node(current)
		if node == nil || node.Parent == "" {
			return false
		}
		if node.Parent == ancestor {
			return true
		}
		current = node.Parent
	}
	return false
}

func insertID(ids []NodeID, id NodeID, index int) []NodeID {
	ids = append(ids, "")
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
