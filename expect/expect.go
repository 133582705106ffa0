package expect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/restcontract/api-contract-tests/client"
)

// Expectation is a single predicate checked against one HTTP response. Check never
// modifies the response, and gives the same result every time it is called with the same
// response.
type Expectation interface {
	Check(resp *client.Response) error
	String() string
}

type expectation struct {
	description string
	check       func(*client.Response) error
}

func (e expectation) Check(resp *client.Response) error {
	if resp == nil {
		return &AssertionError{Expectation: e.description, Detail: "no response"}
	}
	return e.check(resp)
}

func (e expectation) String() string { return e.description }

// New creates an Expectation from an arbitrary check function. The function should return
// an *AssertionError (or any error) if the response is not acceptable.
func New(description string, check func(*client.Response) error) Expectation {
	return expectation{description: description, check: check}
}

// StatusEquals expects the response status to be exactly n.
func StatusEquals(n int) Expectation {
	desc := fmt.Sprintf("status equals %d", n)
	return New(desc, func(r *client.Response) error {
		if r.Status != n {
			return mismatch(desc, strconv.Itoa(n), strconv.Itoa(r.Status))
		}
		return nil
	})
}

// StatusIn expects the response status to be one of the specified codes.
func StatusIn(codes ...int) Expectation {
	strs := make([]string, 0, len(codes))
	for _, c := range codes {
		strs = append(strs, strconv.Itoa(c))
	}
	expected := "one of [" + strings.Join(strs, ", ") + "]"
	desc := "status in [" + strings.Join(strs, ", ") + "]"
	return New(desc, func(r *client.Response) error {
		for _, c := range codes {
			if r.Status == c {
				return nil
			}
		}
		return mismatch(desc, expected, strconv.Itoa(r.Status))
	})
}

// HasFields expects every one of the named fields (which may be paths) to be present in the
// body. If any are missing, the error lists all of them.
func HasFields(names ...string) Expectation {
	desc := "has fields [" + strings.Join(names, ", ") + "]"
	return New(desc, func(r *client.Response) error {
		doc, err := r.JSON()
		if err != nil {
			return &AssertionError{Expectation: desc, Detail: err.Error()}
		}
		var missing []string
		for _, name := range names {
			_, found, err := Lookup(doc, name)
			if err != nil {
				return &AssertionError{Expectation: desc, Detail: err.Error()}
			}
			if !found {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return &AssertionError{Expectation: desc, Missing: missing}
		}
		return nil
	})
}

// FieldExists expects the path to be present in the body, with any value including null.
func FieldExists(path string) Expectation {
	desc := fmt.Sprintf("field %q exists", path)
	return New(desc, func(r *client.Response) error {
		_, err := lookupRequired(desc, r, path)
		return err
	})
}

// FieldEquals expects the value at the path to be equal to the specified value. Numbers are
// compared numerically, so 11 and 11.0 are equal; objects and arrays are compared deeply.
func FieldEquals(path string, value interface{}) Expectation {
	expected := toValue(value)
	desc := fmt.Sprintf("field %q equals %s", path, expected.JSONString())
	return New(desc, func(r *client.Response) error {
		actual, err := lookupRequired(desc, r, path)
		if err != nil {
			return err
		}
		av := ldvalue.CopyArbitraryValue(actual)
		if !av.Equal(expected) {
			return mismatch(desc, expected.JSONString(), av.JSONString())
		}
		return nil
	})
}

// FieldContains expects the value at the path to be a string containing the substring.
func FieldContains(path, substring string) Expectation {
	desc := fmt.Sprintf("field %q contains %q", path, substring)
	return New(desc, func(r *client.Response) error {
		actual, err := lookupRequired(desc, r, path)
		if err != nil {
			return err
		}
		s, ok := actual.(string)
		if !ok {
			return mismatch(desc, "a string", ldvalue.CopyArbitraryValue(actual).JSONString())
		}
		if !strings.Contains(s, substring) {
			return mismatch(desc, fmt.Sprintf("a string containing %q", substring), strconv.Quote(s))
		}
		return nil
	})
}

// FieldIsType expects the value at the path to have the specified JSON type.
func FieldIsType(path string, kind ldvalue.ValueType) Expectation {
	desc := fmt.Sprintf("field %q is %s", path, kind)
	return New(desc, func(r *client.Response) error {
		actual, err := lookupRequired(desc, r, path)
		if err != nil {
			return err
		}
		av := ldvalue.CopyArbitraryValue(actual)
		if av.Type() != kind {
			return mismatch(desc, kind.String(), fmt.Sprintf("%s %s", av.Type(), av.JSONString()))
		}
		return nil
	})
}

// IsSequenceOfLength expects the body to be a JSON array with exactly n elements.
func IsSequenceOfLength(n int) Expectation {
	desc := fmt.Sprintf("is sequence of length %d", n)
	return sequenceLength(desc, strconv.Itoa(n), func(count int) bool { return count == n })
}

// IsSequenceOfLengthBetween expects the body to be a JSON array with at least min and at
// most max elements.
func IsSequenceOfLengthBetween(min, max int) Expectation {
	desc := fmt.Sprintf("is sequence of length between %d and %d", min, max)
	expected := fmt.Sprintf("%d to %d", min, max)
	return sequenceLength(desc, expected, func(count int) bool { return count >= min && count <= max })
}

func sequenceLength(desc, expected string, ok func(int) bool) Expectation {
	return New(desc, func(r *client.Response) error {
		arr, err := bodyArray(desc, r)
		if err != nil {
			return err
		}
		if !ok(len(arr)) {
			return mismatch(desc, expected, strconv.Itoa(len(arr)))
		}
		return nil
	})
}

// AllUnique expects the body to be a JSON array in which the value at the path is present
// in every element and different for every element. If there are duplicates, the error
// lists every duplicated value.
func AllUnique(path string) Expectation {
	desc := fmt.Sprintf("all %q unique", path)
	return New(desc, func(r *client.Response) error {
		arr, err := bodyArray(desc, r)
		if err != nil {
			return err
		}
		seen := make(map[string][]int)
		var order []string
		var missing []string
		for i, elem := range arr {
			v, found, err := Lookup(elem, path)
			if err != nil {
				return &AssertionError{Expectation: desc, Detail: err.Error()}
			}
			if !found {
				missing = append(missing, fmt.Sprintf("[%d].%s", i, path))
				continue
			}
			key := ldvalue.CopyArbitraryValue(v).JSONString()
			if _, ok := seen[key]; !ok {
				order = append(order, key)
			}
			seen[key] = append(seen[key], i)
		}
		if len(missing) > 0 {
			return &AssertionError{Expectation: desc, Missing: missing}
		}
		var dups []string
		for _, key := range order {
			if indexes := seen[key]; len(indexes) > 1 {
				dups = append(dups, fmt.Sprintf("%s at indexes %v", key, indexes))
			}
		}
		if len(dups) > 0 {
			sort.Strings(dups)
			return &AssertionError{
				Expectation: desc,
				Expected:    "no duplicates",
				Actual:      "duplicates: " + strings.Join(dups, "; "),
			}
		}
		return nil
	})
}

// ElapsedUnder expects the call to have taken less than d, measured from sending the
// request to reading the whole response body.
func ElapsedUnder(d time.Duration) Expectation {
	desc := fmt.Sprintf("elapsed under %s", d)
	return New(desc, func(r *client.Response) error {
		if r.Elapsed >= d {
			return mismatch(desc, "< "+d.String(), r.Elapsed.String())
		}
		return nil
	})
}

// HeaderContains expects the named response header to contain the substring.
func HeaderContains(name, substring string) Expectation {
	desc := fmt.Sprintf("header %q contains %q", name, substring)
	return New(desc, func(r *client.Response) error {
		actual := r.Headers.Get(name)
		if !strings.Contains(actual, substring) {
			return mismatch(desc, fmt.Sprintf("%q", substring), fmt.Sprintf("%q", actual))
		}
		return nil
	})
}

// MatchesSchema expects the body to be valid according to an OpenAPI 3 schema.
func MatchesSchema(schema *openapi3.Schema) Expectation {
	name := schema.Title
	if name == "" {
		name = "schema"
	}
	desc := fmt.Sprintf("body matches %s", name)
	return New(desc, func(r *client.Response) error {
		doc, err := r.JSON()
		if err != nil {
			return &AssertionError{Expectation: desc, Detail: err.Error()}
		}
		if err := schema.VisitJSON(doc); err != nil {
			return &AssertionError{Expectation: desc, Detail: err.Error()}
		}
		return nil
	})
}

func lookupRequired(desc string, r *client.Response, path string) (interface{}, error) {
	doc, err := r.JSON()
	if err != nil {
		return nil, &AssertionError{Expectation: desc, Detail: err.Error()}
	}
	v, found, err := Lookup(doc, path)
	if err != nil {
		return nil, &AssertionError{Expectation: desc, Detail: err.Error()}
	}
	if !found {
		return nil, &AssertionError{Expectation: desc, Missing: []string{path}}
	}
	return v, nil
}

func bodyArray(desc string, r *client.Response) ([]interface{}, error) {
	doc, err := r.JSON()
	if err != nil {
		return nil, &AssertionError{Expectation: desc, Detail: err.Error()}
	}
	arr, ok := doc.([]interface{})
	if !ok {
		return nil, mismatch(desc, "array", ldvalue.CopyArbitraryValue(doc).Type().String())
	}
	return arr, nil
}

func toValue(v interface{}) ldvalue.Value {
	switch x := v.(type) {
	case ldvalue.Value:
		return x
	case nil:
		return ldvalue.Null()
	case bool:
		return ldvalue.Bool(x)
	case int:
		return ldvalue.Int(x)
	case int64:
		return ldvalue.Float64(float64(x))
	case float64:
		return ldvalue.Float64(x)
	case string:
		return ldvalue.String(x)
	}
	return ldvalue.FromJSONMarshal(v)
}
