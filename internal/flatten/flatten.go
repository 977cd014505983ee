// Package flatten turns nested JSON documents into flat, display-ready
// key/value lists.
package flatten

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Separator joins path segments in Entry.Path.
const Separator = " -> "

// Entry is one display row produced by Flatten.
type Entry struct {
	Path  string `json:"path"`  // Full traversal path, e.g. "ine1 -> data[0] -> curp"
	Key   string `json:"key"`   // Title-cased final path segment
	Value string `json:"value"` // Display value
}

// DefaultExcludedKeys lists the bookkeeping keys the application hides from
// detail views.
func DefaultExcludedKeys() []string {
	return []string{"_id", "id", "status", "statusCode", "status_code", "code", "message", "msg", "success", "error"}
}

// DefaultExclusions returns DefaultExcludedKeys as a fresh set.
func DefaultExclusions() map[string]bool {
	return ExclusionSet(DefaultExcludedKeys())
}

// ExclusionSet builds an exclusion map from a list of keys.
func ExclusionSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// Flatten walks value depth-first in document key order and returns one
// Entry per leaf. Keys in excluded prune their whole subtree. Entries sharing
// a display key are collapsed: the last value wins and keeps the position of
// the first occurrence.
func Flatten(value gjson.Result, excluded map[string]bool) []Entry {
	w := walker{excluded: excluded}

	switch {
	case value.IsObject():
		w.object(value, nil)
	case value.IsArray():
		for i, elem := range value.Array() {
			w.visit(elem, []string{fmt.Sprintf("[%d]", i)})
		}
	}

	return dedupe(w.entries)
}

type walker struct {
	excluded map[string]bool
	entries  []Entry
}

func (w *walker) object(obj gjson.Result, path []string) {
	obj.ForEach(func(k, child gjson.Result) bool {
		key := k.String()
		if w.excluded[key] {
			return true
		}
		w.visit(child, appendSegment(path, key))
		return true
	})
}

func (w *walker) visit(v gjson.Result, path []string) {
	switch {
	case v.Type == gjson.Null:
		return
	case v.IsObject():
		w.object(v, path)
	case v.IsArray():
		w.array(v, path)
	default:
		w.emit(path, NormalizeValue(scalarString(v)))
	}
}

func (w *walker) array(arr gjson.Result, path []string) {
	elems := arr.Array()
	if len(elems) == 0 {
		return
	}

	if allScalar(elems) {
		parts := make([]string, 0, len(elems))
		for _, e := range elems {
			if e.Type == gjson.Null {
				continue
			}
			parts = append(parts, NormalizeValue(scalarString(e)))
		}
		if len(parts) > 0 {
			w.emit(path, strings.Join(parts, ", "))
		}
		return
	}

	last := path[len(path)-1]
	for i, elem := range elems {
		indexed := appendSegment(path[:len(path)-1], fmt.Sprintf("%s[%d]", last, i))
		w.visit(elem, indexed)
	}
}

func (w *walker) emit(path []string, value string) {
	w.entries = append(w.entries, Entry{
		Path:  strings.Join(path, Separator),
		Key:   TitleKey(path[len(path)-1]),
		Value: value,
	})
}

// appendSegment copies path so sibling branches never share a backing array.
func appendSegment(path []string, segment string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}

func allScalar(elems []gjson.Result) bool {
	for _, e := range elems {
		if e.IsObject() || e.IsArray() {
			return false
		}
	}
	return true
}

func scalarString(v gjson.Result) string {
	switch v.Type {
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		return v.String()
	}
}

func dedupe(entries []Entry) []Entry {
	if len(entries) == 0 {
		return []Entry{}
	}
	out := make([]Entry, 0, len(entries))
	pos := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.Key]; ok {
			out[i] = e
			continue
		}
		pos[e.Key] = len(out)
		out = append(out, e)
	}
	return out
}

// FormatOutput renders entries as "Key: value" lines.
func FormatOutput(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Key+": "+e.Value)
	}
	return strings.Join(lines, "\n")
}
