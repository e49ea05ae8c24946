package template

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name           string
		tmpl           string
		bindings       Bindings
		wantOutput     string
		wantUnresolved []string
	}{
		{
			name:       "whitespace variants resolve identically",
			tmpl:       "{{a}} and {{ a }}",
			bindings:   Bindings{"a": "X"},
			wantOutput: "X and X",
		},
		{
			name:       "asymmetric whitespace",
			tmpl:       "{{ a}}|{{a }}|{{\ta\t}}",
			bindings:   Bindings{"a": "X"},
			wantOutput: "X|X|X",
		},
		{
			name:           "unknown placeholder is kept and reported",
			tmpl:           "{{missing}}",
			bindings:       Bindings{},
			wantOutput:     "{{missing}}",
			wantUnresolved: []string{"missing"},
		},
		{
			name:           "nil bindings",
			tmpl:           "hi {{ who }}",
			wantOutput:     "hi {{ who }}",
			wantUnresolved: []string{"who"},
		},
		{
			name: "hyphenated action-style names",
			tmpl: "{{ check-in-message }} (inactive for {{days-inactive}} days)",
			bindings: Bindings{
				"check-in-message": "Any updates?",
				"days-inactive":    "7",
			},
			wantOutput: "Any updates? (inactive for 7 days)",
		},
		{
			name:           "unresolved names are de-duplicated and sorted",
			tmpl:           "{{z}} {{a}} {{ z }} {{known}}",
			bindings:       Bindings{"known": "k"},
			wantOutput:     "{{z}} {{a}} {{ z }} k",
			wantUnresolved: []string{"a", "z"},
		},
		{
			name:       "values are not re-expanded",
			tmpl:       "{{a}}",
			bindings:   Bindings{"a": "{{b}}", "b": "nope"},
			wantOutput: "{{b}}",
		},
		{
			name:       "malformed tokens pass through",
			tmpl:       "{{ }} {{two words}} {single} {{unclosed",
			bindings:   Bindings{"single": "x"},
			wantOutput: "{{ }} {{two words}} {single} {{unclosed",
		},
		{
			name:       "no placeholders",
			tmpl:       "plain text",
			bindings:   Bindings{"a": "X"},
			wantOutput: "plain text",
		},
		{
			name:       "empty template",
			tmpl:       "",
			wantOutput: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.tmpl, tt.bindings)
			if got.Output != tt.wantOutput {
				t.Errorf("Render().Output = %q, want %q", got.Output, tt.wantOutput)
			}
			if !reflect.DeepEqual(got.Unresolved, tt.wantUnresolved) {
				t.Errorf("Render().Unresolved = %v, want %v", got.Unresolved, tt.wantUnresolved)
			}
			if got.Complete() != (len(tt.wantUnresolved) == 0) {
				t.Errorf("Render().Complete() = %v", got.Complete())
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("{{ b }} {{a}} {{b}} {{ not valid }}")
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders() = %v, want %v", got, want)
	}

	if got := Placeholders("none here"); got != nil {
		t.Errorf("Placeholders() = %v, want nil", got)
	}
}
