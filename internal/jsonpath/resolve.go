// Package jsonpath resolves dotted, indexed path expressions such as
// "ine1.data[0].curp" against a JSON value.
//
// Resolution fails closed: a missing key, a non-object intermediate, an index
// applied to a non-array, an out-of-range index or a malformed expression all
// produce a miss rather than an error.
package jsonpath

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Lookup walks path from root. The boolean is false on any miss.
func Lookup(root gjson.Result, path string) (gjson.Result, bool) {
	if path == "" || !root.Exists() {
		return gjson.Result{}, false
	}

	cur := root
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return gjson.Result{}, false
		}

		if name != "" {
			child, found := member(cur, name)
			if !found {
				return gjson.Result{}, false
			}
			cur = child
		}

		for _, idx := range indexes {
			if !cur.IsArray() {
				return gjson.Result{}, false
			}
			elems := cur.Array()
			if idx >= len(elems) {
				return gjson.Result{}, false
			}
			cur = elems[idx]
		}
	}

	return cur, true
}

// Resolve returns the value at path as a Go value (string, float64, bool,
// nil, []any or map[string]any), or def on a miss.
func Resolve(root gjson.Result, path string, def any) any {
	v, ok := Lookup(root, path)
	if !ok {
		return def
	}
	return v.Value()
}

// String returns the string at path, or def when the path misses or the value
// there is not a JSON string.
func String(root gjson.Result, path string, def string) string {
	v, ok := Lookup(root, path)
	if !ok || v.Type != gjson.String {
		return def
	}
	return v.Str
}

// member returns the value stored under key in an object. Keys are matched
// literally; with duplicate keys the last one wins.
func member(obj gjson.Result, key string) (gjson.Result, bool) {
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	var (
		found gjson.Result
		ok    bool
	)
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			found, ok = v, true
		}
		return true
	})
	return found, ok
}

// parseSegment splits "name[1][2]" into its name and indexes. A segment may
// consist of indexes only ("[0]") when the current value is itself an array.
func parseSegment(segment string) (string, []int, bool) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		if segment == "" || strings.IndexByte(segment, ']') >= 0 {
			return "", nil, false
		}
		return segment, nil, true
	}

	name := segment[:open]
	rest := segment[open:]
	if strings.IndexByte(name, ']') >= 0 {
		return "", nil, false
	}

	var indexes []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil || idx < 0 {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}

	if name == "" && len(indexes) == 0 {
		return "", nil, false
	}
	return name, indexes, true
}

// Valid reports whether path is syntactically well formed.
func Valid(path string) bool {
	if path == "" {
		return false
	}
	for _, segment := range strings.Split(path, ".") {
		if _, _, ok := parseSegment(segment); !ok {
			return false
		}
	}
	return true
}
