package entity

// Registry maps a type name to the Group of entities registered under
// it. An entity may be registered into multiple group names (its own
// type and any number of override types); removing it from one group
// does not affect its membership in another.
type Registry struct {
	groups map[string]*Group
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*Group)}
}

// Register adds e to the group named by overrideType, or e.Type() if
// overrideType is empty. The group is created on first use.
func (r *Registry) Register(e Entity, overrideType string) {
	t := overrideType
	if t == "" {
		t = e.Type()
	}
	r.GetOrCreateGroup(t).Add(e)
}

// GetGroup returns the group for type t, if it has been created.
func (r *Registry) GetGroup(t string) (*Group, bool) {
	g, ok := r.groups[t]
	return g, ok
}

// GetOrCreateGroup returns the group for type t, creating it (and
// recording its insertion order) if it does not exist yet.
func (r *Registry) GetOrCreateGroup(t string) *Group {
	g, ok := r.groups[t]
	if !ok {
		g = NewGroup()
		r.groups[t] = g
		r.order = append(r.order, t)
	}
	return g
}

// GetRegisteredTypes returns every group type name, in the order each
// was first created.
func (r *Registry) GetRegisteredTypes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Clear empties and forgets every group.
func (r *Registry) Clear() {
	for _, g := range r.groups {
		g.Clear()
	}
	r.groups = make(map[string]*Group)
	r.order = nil
}

// ClearDestroyed sweeps destroyed members from every group and returns
// the total number of group-memberships removed (an entity present in
// two groups counts twice).
func (r *Registry) ClearDestroyed() int {
	total := 0
	for _, t := range r.order {
		total += len(r.groups[t].ClearDestroyed())
	}
	return total
}

// UpdateAll invokes Update on every group, in the order the groups were
// first created (which is also the order Engine.Update iterates them).
func (r *Registry) UpdateAll(deltaTicks, totalTicks float64) {
	for _, t := range r.order {
		r.groups[t].Update(deltaTicks, totalTicks)
	}
}
