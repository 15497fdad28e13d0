package entity

// Group is an ordered, id-keyed collection of entities sharing a
// registered type name. Iteration order is always insertion order and
// never depends on map/hash ordering.
type Group struct {
	order   []string
	members map[string]Entity

	onItemAdded           Emitter[Entity]
	onItemRemoved         Emitter[string]
	onListCleared         Emitter[struct{}]
	onDestroyedItemsClear Emitter[[]Entity]
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{members: make(map[string]Entity)}
}

// OnItemAdded subscribes fn to fire once per successful Add.
func (g *Group) OnItemAdded(fn func(Entity)) { g.onItemAdded.Subscribe(fn) }

// OnItemRemoved subscribes fn to fire only when Remove actually removed
// a member.
func (g *Group) OnItemRemoved(fn func(id string)) { g.onItemRemoved.Subscribe(fn) }

// OnListCleared subscribes fn to fire on every Clear/ClearAndDestroy,
// even when the group was already empty.
func (g *Group) OnListCleared(fn func()) {
	g.onListCleared.Subscribe(func(struct{}) { fn() })
}

// OnDestroyedItemsCleared subscribes fn to fire when ClearDestroyed
// actually removed at least one member, carrying the removed entities
// in insertion order.
func (g *Group) OnDestroyedItemsCleared(fn func([]Entity)) {
	g.onDestroyedItemsClear.Subscribe(fn)
}

// Add inserts e if its id is not already present. Idempotent: re-adding
// the same id is a silent no-op, no event fires.
func (g *Group) Add(e Entity) {
	if _, exists := g.members[e.ID()]; exists {
		return
	}
	g.members[e.ID()] = e
	g.order = append(g.order, e.ID())
	g.onItemAdded.Emit(e)
}

// Remove removes e by id. Emits ItemRemoved only if a member was
// actually present.
func (g *Group) Remove(e Entity) bool {
	return g.RemoveID(e.ID())
}

// RemoveID removes the member with the given id.
func (g *Group) RemoveID(id string) bool {
	if _, exists := g.members[id]; !exists {
		return false
	}
	delete(g.members, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.onItemRemoved.Emit(id)
	return true
}

// Has reports whether e's id is a member.
func (g *Group) Has(e Entity) bool { return g.HasID(e.ID()) }

// HasID reports whether id is a member.
func (g *Group) HasID(id string) bool {
	_, ok := g.members[id]
	return ok
}

// GetByID returns the member with id, if any.
func (g *Group) GetByID(id string) (Entity, bool) {
	e, ok := g.members[id]
	return e, ok
}

// Size returns the number of members, including destroyed ones.
func (g *Group) Size() int { return len(g.order) }

// ActiveSize returns the number of non-destroyed members.
func (g *Group) ActiveSize() int {
	n := 0
	for _, id := range g.order {
		if !g.members[id].Destroyed() {
			n++
		}
	}
	return n
}

// GetAllActive returns non-destroyed members in insertion order.
func (g *Group) GetAllActive() []Entity {
	out := make([]Entity, 0, len(g.order))
	for _, id := range g.order {
		if e := g.members[id]; !e.Destroyed() {
			out = append(out, e)
		}
	}
	return out
}

// GetAll returns every member, including destroyed ones, in insertion
// order.
func (g *Group) GetAll() []Entity {
	out := make([]Entity, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.members[id])
	}
	return out
}

// Clear empties the group and unconditionally emits ListCleared, even
// if the group was already empty.
func (g *Group) Clear() {
	g.members = make(map[string]Entity)
	g.order = nil
	g.onListCleared.Emit(struct{}{})
}

// ClearAndDestroy destroys every currently-active member, in insertion
// order, then empties the group and emits ListCleared. Members that
// were already destroyed before this call are not re-destroyed (Destroy
// is idempotent regardless, but this avoids calling it needlessly).
func (g *Group) ClearAndDestroy() {
	for _, id := range g.order {
		if e := g.members[id]; !e.Destroyed() {
			e.Destroy()
		}
	}
	g.Clear()
}

// ClearDestroyed removes every destroyed member. Emits
// DestroyedItemsCleared with the removed entities, in insertion order,
// AFTER the mutation — only when at least one was removed.
func (g *Group) ClearDestroyed() []Entity {
	var removed []Entity
	var kept []string
	for _, id := range g.order {
		e := g.members[id]
		if e.Destroyed() {
			removed = append(removed, e)
			delete(g.members, id)
		} else {
			kept = append(kept, id)
		}
	}
	g.order = kept

	if len(removed) > 0 {
		g.onDestroyedItemsClear.Emit(removed)
	}
	return removed
}

// Update iterates members in insertion order and calls Update on every
// non-destroyed one.
func (g *Group) Update(deltaTicks, totalTicks float64) {
	for _, id := range g.order {
		if e := g.members[id]; !e.Destroyed() {
			e.Update(deltaTicks, totalTicks)
		}
	}
}
