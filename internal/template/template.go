// Package template renders reminder messages containing {{name}} placeholders.
package template

import (
	"regexp"
	"sort"
)

// placeholderRegex matches "{{", optional whitespace, a name, optional whitespace, "}}".
// Hyphens are allowed in names so action-style inputs like {{ days-inactive }} work.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Bindings maps placeholder names to replacement text.
type Bindings map[string]string

// Result is the outcome of a render.
type Result struct {
	Output string `json:"output"`
	// Unresolved lists placeholder names with no binding, sorted and de-duplicated.
	Unresolved []string `json:"unresolved,omitempty"`
}

// Complete reports whether every placeholder was resolved.
func (r Result) Complete() bool {
	return len(r.Unresolved) == 0
}

// Render replaces every recognized placeholder in tmpl with its binding.
// Unknown placeholders are left verbatim and reported. Replacement values are
// inserted literally and never re-expanded.
func Render(tmpl string, bindings Bindings) Result {
	missing := make(map[string]struct{})

	out := placeholderRegex.ReplaceAllStringFunc(tmpl, func(token string) string {
		name := placeholderRegex.FindStringSubmatch(token)[1]
		if v, ok := bindings[name]; ok {
			return v
		}
		missing[name] = struct{}{}
		return token
	})

	return Result{
		Output:     out,
		Unresolved: sortedKeys(missing),
	}
}

// Placeholders returns the distinct placeholder names referenced by tmpl, sorted.
func Placeholders(tmpl string) []string {
	names := make(map[string]struct{})
	for _, m := range placeholderRegex.FindAllStringSubmatch(tmpl, -1) {
		names[m[1]] = struct{}{}
	}
	return sortedKeys(names)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
