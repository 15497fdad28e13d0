// Package serializer is a name-keyed codec registry for value types
// that appear in event parameters or entity snapshots. It produces a
// tree of plain values (numbers, strings, booleans, nil, slices, maps)
// plus tagged envelopes for registered types, and is the inverse
// operation that reconstructs them.
package serializer

import "fmt"

// Codec pairs a type's wire conversion both ways. Serialize must return
// a plain-value tree (no cycles); Deserialize is its exact inverse.
type Codec struct {
	Serialize   func(v any) (any, error)
	Deserialize func(data any) (any, error)
}

// envelope is the tagged wrapper a registered type serializes to.
type envelope struct {
	Type string `json:"__type"`
	Data any    `json:"data"`
}

// Registry is an engine-scoped name-keyed codec table. The zero value
// is not usable; construct with New.
type Registry struct {
	codecs map[string]Codec
}

// New creates an empty registry. Callers wanting a single process-wide
// table (as spec.md §4.9 allows but does not require) can share one
// instance; nothing here reaches for global state itself.
func New() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register installs the codec for typeName, replacing any existing one.
func (r *Registry) Register(typeName string, codec Codec) {
	r.codecs[typeName] = codec
}

// Serialize converts v into a plain-value tree. Registered types
// (looked up by typeName) become {__type, data} envelopes; everything
// else passes through unregistered-primitive rules: maps and slices
// recurse, everything else is emitted as-is.
func (r *Registry) Serialize(typeName string, v any) (any, error) {
	if typeName != "" {
		codec, ok := r.codecs[typeName]
		if !ok {
			return nil, fmt.Errorf("serializer: no codec registered for type %q", typeName)
		}
		data, err := codec.Serialize(v)
		if err != nil {
			return nil, fmt.Errorf("serializer: encoding %q: %w", typeName, err)
		}
		plain, err := r.serializeValue(data, make(map[any]bool))
		if err != nil {
			return nil, err
		}
		return envelope{Type: typeName, Data: plain}, nil
	}
	return r.serializeValue(v, make(map[any]bool))
}

// serializeValue recurses through an already-plain tree, guarding
// against cycles in maps/slices of pointers (the only place a cycle
// could hide, since the registered codecs themselves are black boxes).
func (r *Registry) serializeValue(v any, seen map[any]bool) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		key := fmt.Sprintf("%p", t)
		if seen[key] {
			return nil, fmt.Errorf("serializer: cycle detected")
		}
		seen[key] = true
		defer delete(seen, key)
		out := make(map[string]any, len(t))
		for k, e := range t {
			ev, err := r.serializeValue(e, seen)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []any:
		if len(t) > 0 {
			key := fmt.Sprintf("%p", t)
			if seen[key] {
				return nil, fmt.Errorf("serializer: cycle detected")
			}
			seen[key] = true
			defer delete(seen, key)
		}
		out := make([]any, len(t))
		for i, e := range t {
			ev, err := r.serializeValue(e, seen)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	default:
		return v, nil
	}
}

// Deserialize is the inverse of Serialize: an envelope with a
// registered __type is decoded via that codec; anything else passes
// through unchanged.
func (r *Registry) Deserialize(v any) (any, error) {
	env, ok := v.(envelope)
	if !ok {
		if m, ok := v.(map[string]any); ok {
			if typeName, hasType := m["__type"].(string); hasType {
				codec, ok := r.codecs[typeName]
				if !ok {
					return nil, fmt.Errorf("serializer: no codec registered for type %q", typeName)
				}
				return codec.Deserialize(m["data"])
			}
		}
		return v, nil
	}
	codec, ok := r.codecs[env.Type]
	if !ok {
		return nil, fmt.Errorf("serializer: no codec registered for type %q", env.Type)
	}
	return codec.Deserialize(env.Data)
}
