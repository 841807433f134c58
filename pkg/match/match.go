// Package match implements structural containment checks over generic
// semi-structured values (the map/slice/scalar model produced by decoding
// JSON or YAML documents). It is used to decide whether a remote resource
// representation already satisfies a desired configuration, so that an
// update call can be skipped.
package match

import (
	"sort"

	"github.com/spf13/cast"
)

type (
	// Exclusions is a set of mapping keys that are skipped during comparison
	// at every nesting depth. Typically used to ignore server-generated
	// fields like timestamps or internal identifiers.
	Exclusions map[string]struct{}
)

// NewExclusions builds an exclusion set from a list of key names.
func NewExclusions(keys ...string) Exclusions {
	e := make(Exclusions, len(keys))

	for _, k := range keys {
		e[k] = struct{}{}
	}

	return e
}

// Has reports whether a key belongs to the exclusion set. Safe to call on a nil set.
func (e Exclusions) Has(key string) bool {
	if e == nil {
		return false
	}

	_, ok := e[key]

	return ok
}

// Merge returns a new exclusion set containing the keys of both sets.
func (e Exclusions) Merge(other Exclusions) Exclusions {
	merged := make(Exclusions, len(e)+len(other))

	for k := range e {
		merged[k] = struct{}{}
	}
	for k := range other {
		merged[k] = struct{}{}
	}

	return merged
}

// IsSubset reports whether actual structurally satisfies desired: every key
// and element present in desired must have a matching counterpart in actual,
// while actual may carry additional keys and elements.
//
// Mappings are compared by key lookup, sequences are compared without regard
// to element order, booleans are compared exactly and everything else falls
// back to comparing textual representations (so 1 and "1" are considered
// equal, matching the behavior of APIs that return every field as a string).
// A missing key or a shape mismatch is a normal false, never an error.
func IsSubset(desired, actual any, exclude Exclusions) bool {
	if dm, ok := asMapping(desired); ok {
		am, ok := asMapping(actual)
		if !ok {
			return false
		}

		for k, dv := range dm {
			if exclude.Has(k) {
				continue
			}

			av, ok := am[k]
			if !ok {
				return false
			}

			if !IsSubset(dv, av, exclude) {
				return false
			}
		}

		return true
	}

	if ds, ok := asSequence(desired); ok {
		as, ok := asSequence(actual)
		if !ok {
			return false
		}

		for _, dv := range ds {
			if !matchElement(dv, as, exclude) {
				return false
			}
		}

		return true
	}

	// A scalar never matches a container.
	if isContainer(actual) {
		return false
	}

	return scalarEqual(desired, actual)
}

// NilKeys returns the sorted list of top-level keys of m whose value is nil.
// Callers use it to extend the exclusion set with parameters they left unset.
func NilKeys(m map[string]any) []string {
	keys := make([]string, 0)

	for k, v := range m {
		if v == nil {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	return keys
}

// Diff returns the sorted list of top-level desired keys that are not
// satisfied by actual. It reuses the IsSubset rules per key and is intended
// for change reporting only: an empty result is equivalent to IsSubset
// returning true for two mappings.
func Diff(desired, actual map[string]any, exclude Exclusions) []string {
	keys := make([]string, 0)

	for k, dv := range desired {
		if exclude.Has(k) {
			continue
		}

		av, ok := actual[k]
		if !ok || !IsSubset(dv, av, exclude) {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	return keys
}

// matchElement checks a single desired sequence element against all candidate
// elements of the actual sequence. Container elements match if at least one
// candidate satisfies them recursively, scalars match by membership. Matched
// candidates are not consumed: one actual element may satisfy several desired
// elements.
func matchElement(desired any, actual []any, exclude Exclusions) bool {
	if isContainer(desired) {
		for _, av := range actual {
			if IsSubset(desired, av, exclude) {
				return true
			}
		}

		return false
	}

	for _, av := range actual {
		if !isContainer(av) && scalarEqual(desired, av) {
			return true
		}
	}

	return false
}

// scalarEqual compares two non-container values. Booleans must match exactly:
// a boolean and its string spelling are never equal. Everything else is
// compared by textual representation.
func scalarEqual(a, b any) bool {
	ab, aok := a.(bool)
	bb, bok := b.(bool)

	if aok || bok {
		return aok && bok && ab == bb
	}

	return cast.ToString(a) == cast.ToString(b)
}

// asMapping normalizes the two mapping representations produced by the JSON
// and YAML decoders into a string-keyed map.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		sm := make(map[string]any, len(m))
		for k, mv := range m {
			sm[cast.ToString(k)] = mv
		}
		return sm, true
	default:
		return nil, false
	}
}

// asSequence normalizes sequence representations.
func asSequence(v any) ([]any, bool) {
	s, ok := v.([]any)

	return s, ok
}

// isContainer reports whether a value is a mapping or a sequence.
func isContainer(v any) bool {
	if _, ok := asMapping(v); ok {
		return true
	}

	_, ok := asSequence(v)

	return ok
}
