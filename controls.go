package screentone

// ControlBuilder is the consumed control-surface contract. Hosts provide an
// implementation whose constructors create interactive widgets; each widget
// reports edits through the effect's ChangeFunc, which mutates the shared
// parameter map and triggers a debounced render.
//
// The engine never depends on widget behavior, only on the callback shape,
// so headless hosts can use RecordingBuilder.
type ControlBuilder interface {
	Slider(key, label string, min, max, step, value float64, onChange ChangeFunc)
	Select(key, label string, options []string, value string, onChange ChangeFunc)
	Toggle(key, label string, value bool, onChange ChangeFunc)
	Color(key, label string, value string, onChange ChangeFunc)
	Number(key, label string, min, max, value float64, onChange ChangeFunc)
}

// ControlKind identifies the widget type of a recorded control descriptor.
type ControlKind int

const (
	ControlSlider ControlKind = iota
	ControlSelect
	ControlToggle
	ControlColor
	ControlNumber
)

// ControlSpec is a recorded control descriptor.
type ControlSpec struct {
	Kind     ControlKind
	Key      string
	Label    string
	Min, Max float64
	Step     float64
	Options  []string
	Value    any
	OnChange ChangeFunc
}

// RecordingBuilder is a ControlBuilder that records descriptors instead of
// constructing widgets. Tests and headless hosts use it to inspect the
// control set an effect declares.
type RecordingBuilder struct {
	Specs []ControlSpec
}

func (b *RecordingBuilder) Slider(key, label string, min, max, step, value float64, onChange ChangeFunc) {
	b.Specs = append(b.Specs, ControlSpec{
		Kind: ControlSlider, Key: key, Label: label,
		Min: min, Max: max, Step: step, Value: value, OnChange: onChange,
	})
}

func (b *RecordingBuilder) Select(key, label string, options []string, value string, onChange ChangeFunc) {
	b.Specs = append(b.Specs, ControlSpec{
		Kind: ControlSelect, Key: key, Label: label,
		Options: options, Value: value, OnChange: onChange,
	})
}

func (b *RecordingBuilder) Toggle(key, label string, value bool, onChange ChangeFunc) {
	b.Specs = append(b.Specs, ControlSpec{
		Kind: ControlToggle, Key: key, Label: label, Value: value, OnChange: onChange,
	})
}

func (b *RecordingBuilder) Color(key, label string, value string, onChange ChangeFunc) {
	b.Specs = append(b.Specs, ControlSpec{
		Kind: ControlColor, Key: key, Label: label, Value: value, OnChange: onChange,
	})
}

func (b *RecordingBuilder) Number(key, label string, min, max, value float64, onChange ChangeFunc) {
	b.Specs = append(b.Specs, ControlSpec{
		Kind: ControlNumber, Key: key, Label: label,
		Min: min, Max: max, Value: value, OnChange: onChange,
	})
}

// Keys returns the parameter keys of the recorded controls, in order.
func (b *RecordingBuilder) Keys() []string {
	keys := make([]string, len(b.Specs))
	for i, s := range b.Specs {
		keys[i] = s.Key
	}
	return keys
}
