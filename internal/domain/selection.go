package domain

import (
	"fmt"
	"sort"
)

// OptionValue is the chosen value(s) for one option group. Exactly one of
// One or Many is meaningful, decided by Mode.
type OptionValue struct {
	Mode SelectionMode `json:"mode" bson:"mode"`
	One  string        `json:"one,omitempty" bson:"one,omitempty"`
	Many []string      `json:"many,omitempty" bson:"many,omitempty"`
}

// Equal compares two option values structurally. Multi-choice sets compare
// order-independently; single choices compare exactly.
func (v OptionValue) Equal(other OptionValue) bool {
	if v.Mode != other.Mode {
		return false
	}
	if v.Mode == SelectSingle {
		return v.One == other.One
	}
	if len(v.Many) != len(other.Many) {
		return false
	}
	seen := make(map[string]int, len(v.Many))
	for _, c := range v.Many {
		seen[c]++
	}
	for _, c := range other.Many {
		seen[c]--
		if seen[c] < 0 {
			return false
		}
	}
	return true
}

func (v OptionValue) contains(choice string) bool {
	for _, c := range v.Many {
		if c == choice {
			return true
		}
	}
	return false
}

// Selection maps an option group's type tag to the concrete choice(s) made
// for it. Every group on the item has exactly one entry.
type Selection map[string]OptionValue

// NewSelection builds the initial selection for an item from each group's
// default. Multi-choice defaults are copied so later toggles cannot alias
// the catalog's default slice.
func NewSelection(item MenuItem) Selection {
	sel := make(Selection, len(item.Options))
	for _, g := range item.Options {
		v := OptionValue{Mode: g.Mode, One: g.Default.One}
		if g.Mode == SelectMulti {
			v.Many = append([]string(nil), g.Default.Many...)
		}
		sel[g.Type] = v
	}
	return sel
}

// Toggle returns a new selection with the addressed group's entry changed:
// multi-choice values are added if absent and removed if present,
// single-choice values are replaced. An unknown group type is a no-op.
// The receiver is never mutated.
func (s Selection) Toggle(groupType, value string) Selection {
	current, ok := s[groupType]
	if !ok {
		return s
	}

	next := s.clone()
	if current.Mode == SelectSingle {
		current.One = value
		next[groupType] = current
		return next
	}

	if current.contains(value) {
		many := make([]string, 0, len(current.Many)-1)
		for _, c := range current.Many {
			if c != value {
				many = append(many, c)
			}
		}
		current.Many = many
	} else {
		current.Many = append(append([]string(nil), current.Many...), value)
	}
	next[groupType] = current
	return next
}

// Equal reports whether two selections make the same choice for every group.
func (s Selection) Equal(other Selection) bool {
	if len(s) != len(other) {
		return false
	}
	for groupType, v := range s {
		ov, ok := other[groupType]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (s Selection) clone() Selection {
	next := make(Selection, len(s))
	for groupType, v := range s {
		if v.Many != nil {
			v.Many = append([]string(nil), v.Many...)
		}
		next[groupType] = v
	}
	return next
}

// ResolveSelection builds the selection for an item from the caller's picks,
// starting from each group's default. Picks for unknown groups are ignored.
// A pick for a single-choice group replaces the default and must name
// exactly one declared choice; picks for a multi-choice group replace the
// default set. This is the one place the loose wire shape of options is
// validated; downstream code never branches on cardinality again.
func ResolveSelection(item MenuItem, picks map[string][]string) (Selection, error) {
	sel := NewSelection(item)

	for _, g := range item.Options {
		picked, ok := picks[g.Type]
		if !ok {
			continue
		}
		for _, choice := range picked {
			if !declaredChoice(g, choice) {
				return nil, fmt.Errorf("option %q has no choice %q", g.Type, choice)
			}
		}

		if g.Mode == SelectSingle {
			if len(picked) != 1 {
				return nil, fmt.Errorf("option %q takes exactly one choice, got %d", g.Type, len(picked))
			}
			sel = sel.Toggle(g.Type, picked[0])
			continue
		}

		// Multi: toggle off defaults the caller dropped, toggle on new picks.
		want := make(map[string]bool, len(picked))
		for _, choice := range picked {
			want[choice] = true
		}
		for _, choice := range sel[g.Type].Many {
			if !want[choice] {
				sel = sel.Toggle(g.Type, choice)
			}
		}
		for _, choice := range sortedKeys(want) {
			if !sel[g.Type].contains(choice) {
				sel = sel.Toggle(g.Type, choice)
			}
		}
	}

	return sel, nil
}

func declaredChoice(g OptionGroup, choice string) bool {
	for _, c := range g.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
