package data

import (
	"strconv"
	"strings"
)

// Resolve performs a dotted-path lookup starting at the given value.  Each
// segment indexes the value accumulated so far: map values by key, list
// values by decimal position.  The moment an intermediate value is null or
// absent, resolution short-circuits to Undefined; a missing path is a normal
// outcome, never an error.
func Resolve(v Value, path string) Value {
	return ResolveSegments(v, strings.Split(path, "."))
}

// ResolveSegments is Resolve with the path already split on dots.
func ResolveSegments(v Value, segments []string) Value {
	for _, segment := range segments {
		switch cur := v.(type) {
		case nil, Undefined, Null:
			return Undefined{}
		case Map:
			v = cur.Key(segment)
		case List:
			var n, err = strconv.Atoi(segment)
			if err != nil {
				return Undefined{}
			}
			v = cur.Index(n)
		default:
			// primitives have no sub-paths
			return Undefined{}
		}
	}
	if v == nil {
		return Undefined{}
	}
	return v
}
