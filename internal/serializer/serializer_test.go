package serializer

import "testing"

type vector struct{ X, Y float64 }

func vectorCodec() Codec {
	return Codec{
		Serialize: func(v any) (any, error) {
			vec := v.(vector)
			return map[string]any{"x": vec.X, "y": vec.Y}, nil
		},
		Deserialize: func(data any) (any, error) {
			m := data.(map[string]any)
			return vector{X: m["x"].(float64), Y: m["y"].(float64)}, nil
		},
	}
}

func TestRoundTripRegisteredType(t *testing.T) {
	r := New()
	r.Register("Vector", vectorCodec())

	out, err := r.Serialize("Vector", vector{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	back, err := r.Deserialize(out)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if back.(vector) != (vector{X: 1, Y: 2}) {
		t.Fatalf("got %+v, want {1 2}", back)
	}
}

func TestUnregisteredTypeSerializeFails(t *testing.T) {
	r := New()
	if _, err := r.Serialize("Missing", vector{}); err == nil {
		t.Fatal("expected error for unregistered type")
	}
}

func TestUnregisteredPrimitivesPassThroughStably(t *testing.T) {
	r := New()
	in := map[string]any{"a": 1.0, "b": []any{"x", "y"}}
	out, err := r.Serialize("", in)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	m := out.(map[string]any)
	if m["a"] != 1.0 {
		t.Fatalf("got %v, want 1.0", m["a"])
	}
	list := m["b"].([]any)
	if len(list) != 2 || list[0] != "x" || list[1] != "y" {
		t.Fatalf("list=%v, want [x y]", list)
	}
}

func TestEnvelopeCarriesTypeName(t *testing.T) {
	r := New()
	r.Register("Vector", vectorCodec())

	out, _ := r.Serialize("Vector", vector{X: 3, Y: 4})
	env, ok := out.(envelope)
	if !ok {
		t.Fatalf("expected envelope, got %T", out)
	}
	if env.Type != "Vector" {
		t.Fatalf("envelope type=%q, want Vector", env.Type)
	}
}

func TestDeserializeFromDecodedMapEnvelope(t *testing.T) {
	r := New()
	r.Register("Vector", vectorCodec())

	// Simulates an envelope that arrived via JSON decoding, where the
	// tagged wrapper is a plain map rather than the internal envelope
	// type.
	decoded := map[string]any{
		"__type": "Vector",
		"data":   map[string]any{"x": 5.0, "y": 6.0},
	}
	back, err := r.Deserialize(decoded)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if back.(vector) != (vector{X: 5, Y: 6}) {
		t.Fatalf("got %+v, want {5 6}", back)
	}
}
