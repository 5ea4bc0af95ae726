// SPDX-License-Identifier: Apache-2.0

package dsl

import "github.com/pgcompare/pgcompare/pkg/change"

// SerializeRule is one entry of spec.md §6.1's Serialize DSL: `[{when:
// FilterPattern, options: {skipAuthorization?: bool, ...}}]`.
type SerializeRule struct {
	When    Pattern                  `json:"when" yaml:"when"`
	Options change.SerializeOptions `json:"options" yaml:"options"`
}

// SerializeFunc is the compiled form: Change -> (options, ok). ok is false
// when no rule matched, per spec.md §6.1 ("no match -> default").
type SerializeFunc func(*change.Change) (change.SerializeOptions, bool)

// CompileSerializeRules implements spec.md §6.1's "first matching rule
// supplies serialization options... no match -> default".
func CompileSerializeRules(rules []SerializeRule) SerializeFunc {
	return func(c *change.Change) (change.SerializeOptions, bool) {
		for _, r := range rules {
			if r.When.Matches(c) {
				return r.Options, true
			}
		}
		return change.SerializeOptions{}, false
	}
}

// SerializeAll renders every change using fn where it matches, and
// change.SerializeOptions{} (the default) otherwise (spec.md §6.1).
func SerializeAll(changes []*change.Change, fn SerializeFunc) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		opts, ok := fn(c)
		if !ok {
			opts = change.SerializeOptions{}
		}
		out = append(out, c.Serialize(opts))
	}
	return out
}
