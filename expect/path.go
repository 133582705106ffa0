package expect

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookup navigates a path into a decoded JSON document (as produced by encoding/json into
// an interface{}). A path is a dotted list of object keys, each optionally followed by one
// or more array indexes: "address.geo.lat", "[0].id", "items[2].name". An empty path, "$",
// or a leading "$." refers to the document root.
//
// found is false if any element of the path does not exist in the document. err is only
// returned for a path that cannot be parsed.
func Lookup(doc interface{}, path string) (value interface{}, found bool, err error) {
	segments, err := parsePath(path)
	if err != nil {
		return nil, false, err
	}
	current := doc
	for _, seg := range segments {
		if seg.isIndex {
			arr, ok := current.([]interface{})
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false, nil
			}
			current = arr[seg.index]
			continue
		}
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false, nil
		}
		v, ok := obj[seg.key]
		if !ok {
			return nil, false, nil
		}
		current = v
	}
	return current, true, nil
}

type pathSegment struct {
	key     string
	index   int
	isIndex bool
}

func parsePath(path string) ([]pathSegment, error) {
	rest := strings.TrimPrefix(path, "$")
	rest = strings.TrimPrefix(rest, ".")
	var segments []pathSegment
	for _, part := range strings.Split(rest, ".") {
		if part == "" {
			if rest == "" {
				break
			}
			return nil, fmt.Errorf("invalid path %q: empty element", path)
		}
		key := part
		if bracket := strings.Index(part, "["); bracket >= 0 {
			key = part[:bracket]
			indexes := part[bracket:]
			if key != "" {
				segments = append(segments, pathSegment{key: key})
			}
			for indexes != "" {
				end := strings.Index(indexes, "]")
				if !strings.HasPrefix(indexes, "[") || end < 0 {
					return nil, fmt.Errorf("invalid path %q: malformed index in %q", path, part)
				}
				n, err := strconv.Atoi(indexes[1:end])
				if err != nil {
					return nil, fmt.Errorf("invalid path %q: bad index in %q: %w", path, part, err)
				}
				segments = append(segments, pathSegment{index: n, isIndex: true})
				indexes = indexes[end+1:]
			}
			continue
		}
		segments = append(segments, pathSegment{key: key})
	}
	return segments, nil
}

// ValidatePath returns an error if the path cannot be parsed.
func ValidatePath(path string) error {
	_, err := parsePath(path)
	return err
}
