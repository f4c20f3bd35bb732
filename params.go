package screentone

import "math"

// Params is the parameter state of one effect: a name-to-value mapping owned
// by the processor, mutated only by control callbacks and read once per
// render tick. A processor seeds each effect's Params from its default set,
// so every declared key is always present.
//
// Values are loosely typed the way control surfaces deliver them; the typed
// getters coerce and clamp instead of failing, because degenerate parameters
// degrade, they do not error.
type Params map[string]any

// Clone returns a shallow copy of the parameter map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge copies every key from defaults that is absent from p. Used to
// guarantee the no-partial-state invariant when defaults gain new keys.
func (p Params) Merge(defaults Params) {
	for k, v := range defaults {
		if _, ok := p[k]; !ok {
			p[k] = v
		}
	}
}

// Float returns the named parameter as a float64. Missing or non-numeric
// values return 0. NaN coerces to 0 so numeric parameters stay inside the
// documented domain.
func (p Params) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		if math.IsNaN(v) {
			return 0
		}
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Int returns the named parameter truncated to an int.
func (p Params) Int(key string) int {
	return int(p.Float(key))
}

// Bool returns the named parameter as a bool. Missing keys are false.
func (p Params) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// String returns the named parameter as a string. Missing keys are "".
func (p Params) String(key string) string {
	v, _ := p[key].(string)
	return v
}
