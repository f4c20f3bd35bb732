package screentone

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParamsClone(t *testing.T) {
	p := Params{"enabled": true, "spread": 32.0, "algorithm": "bayer"}
	c := p.Clone()

	if diff := cmp.Diff(p, c); diff != "" {
		t.Errorf("clone mismatch (-want +got):\n%s", diff)
	}

	c["spread"] = 64.0
	if p.Float("spread") != 32.0 {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestParamsMerge(t *testing.T) {
	p := Params{"spread": 64.0}
	p.Merge(Params{"spread": 32.0, "enabled": false, "algorithm": "none"})

	want := Params{"spread": 64.0, "enabled": false, "algorithm": "none"}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestParamsFloat(t *testing.T) {
	p := Params{
		"f64":     1.5,
		"f32":     float32(2.5),
		"int":     3,
		"nan":     math.NaN(),
		"string":  "7",
		"boolean": true,
	}

	tests := []struct {
		key  string
		want float64
	}{
		{"f64", 1.5},
		{"f32", 2.5},
		{"int", 3},
		{"nan", 0},
		{"string", 0},
		{"boolean", 0},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := p.Float(tt.key); got != tt.want {
			t.Errorf("Float(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParamsInt(t *testing.T) {
	p := Params{"count": 64.9, "neg": -2.1}
	if got := p.Int("count"); got != 64 {
		t.Errorf("Int(count) = %d, want 64", got)
	}
	if got := p.Int("neg"); got != -2 {
		t.Errorf("Int(neg) = %d, want -2", got)
	}
	if got := p.Int("missing"); got != 0 {
		t.Errorf("Int(missing) = %d, want 0", got)
	}
}

func TestParamsBoolAndString(t *testing.T) {
	p := Params{"on": true, "mode": "tonal", "n": 1}
	if !p.Bool("on") {
		t.Error("Bool(on) = false, want true")
	}
	if p.Bool("n") {
		t.Error("Bool(n) = true for non-bool value, want false")
	}
	if p.Bool("missing") {
		t.Error("Bool(missing) = true, want false")
	}
	if got := p.String("mode"); got != "tonal" {
		t.Errorf("String(mode) = %q, want %q", got, "tonal")
	}
	if got := p.String("n"); got != "" {
		t.Errorf("String(n) = %q for non-string value, want empty", got)
	}
}
