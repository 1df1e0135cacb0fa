// Package util contains small generic helpers shared by the thingtalk
// packages. Nothing in here is specific to ThingTalk semantics.
package util

import "sort"

// OrderedKeys returns the keys of the given map in sorted order. This is used
// anywhere map iteration order would otherwise leak into output that must be
// deterministic, such as parse-table construction and entity bag scans.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
