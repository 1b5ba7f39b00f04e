package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type slot struct{ typ string }

func (s *slot) ContextType() string { return s.typ }

type provider struct {
	export Injectable
	deps   []Dependency
}

func (p *provider) Export() Injectable         { return p.export }
func (p *provider) Dependencies() []Dependency { return p.deps }

type bundle struct{ members []any }

func (b *bundle) Members() []any { return b.members }

// exportOnly has part of the provider shape
type exportOnly struct{ export Injectable }

func (e *exportOnly) Export() Injectable { return e.export }

type valueSlot struct{}

func (valueSlot) ContextType() string { return "value" }

// marker has no fields, so two markers may share an address
type marker struct{}

func (*marker) ContextType() string { return "marker" }

func TestClassify(t *testing.T) {
	a := &slot{typ: "a"}
	b := &slot{typ: "b"}
	p := &provider{export: a, deps: []Dependency{{Name: "b", Injectable: b}}}
	var nilSlot *slot

	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"injectable", a, KindInjectable},
		{"definition", p, KindDefinition},
		{"module", &bundle{members: []any{p}}, KindModule},
		{"empty module", &bundle{}, KindModule},
		{"mixed collection", &bundle{members: []any{p, a}}, KindNone},
		{"partial provider shape", &exportOnly{export: a}, KindNone},
		{"provider without export", &provider{}, KindNone},
		{"provider with nil dependency", &provider{export: a, deps: []Dependency{{Name: "x"}}}, KindNone},
		{"provider with typed nil export", &provider{export: nilSlot}, KindNone},
		{"non-pointer value", valueSlot{}, KindNone},
		{"nil pointer", nilSlot, KindNone},
		{"nil", nil, KindNone},
		{"string", "hello", KindNone},
		{"int pointer", new(int), KindNone},
		{"zero-size injectable", new(marker), KindNone},
		{"provider exporting zero-size injectable", &provider{export: new(marker)}, KindNone},
		{"provider depending on zero-size injectable", &provider{export: a, deps: []Dependency{{Name: "m", Injectable: new(marker)}}}, KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value))
		})
	}
}

func TestClassify_ModuleWithMalformedMember(t *testing.T) {
	a := &slot{typ: "a"}
	good := &provider{export: a}
	bad := &provider{}

	assert.Equal(t, KindNone, Classify(&bundle{members: []any{good, bad}}))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "injectable", KindInjectable.String())
	assert.Equal(t, "definition", KindDefinition.String())
	assert.Equal(t, "module", KindModule.String())
	assert.Equal(t, "none", KindNone.String())
}
