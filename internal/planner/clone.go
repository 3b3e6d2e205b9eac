package planner

// Clone returns an EP with independently mutable EPNodes and context,
// sharing the same (read-only) BDD reference (spec.md §4.5 "Ownership":
// "Cloning an EP clones EPNodes, copies the context, and shares the
// BDD"). The clone's id is left at zero; Driver assigns EP ids to
// candidates as they are pushed onto the open set.
func (ep *EP) Clone() *EP {
	out := &EP{
		bdd:    ep.bdd,
		ctx:    ep.ctx.Clone(),
		nodes:  make(map[EPNodeID]*EPNode, len(ep.nodes)),
		nextID: ep.nextID,
		root:   ep.root,
		leaves: append([]Leaf(nil), ep.leaves...),
	}
	for id, n := range ep.nodes {
		clone := *n
		clone.Children = append([]EPNodeID(nil), n.Children...)
		out.nodes[id] = &clone
	}
	return out
}

// WithID returns ep with its id set, for use right before pushing a
// freshly cloned candidate onto the Driver's open set.
func (ep *EP) WithID(id EPID) *EP {
	ep.id = id
	return ep
}
