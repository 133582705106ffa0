package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

var wholeTemplateRegex = regexp.MustCompile(`^\{\{\s*([^{}]+?)\s*\}\}$`)

// UnresolvedVariableError means that a step referred to a variable that has not been set.
type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variable %q", e.Name)
}

// expandString replaces every {{name}} reference in s. A string variable is inserted as is;
// any other value is inserted as JSON, so the number 11 becomes "11".
//
// A reference of the form {{env.NAME}} is resolved from the environment.
func expandString(s string, vars map[string]ldvalue.Value) (string, error) {
	result := s
	pos := 0
	for {
		start := strings.Index(result[pos:], "{{")
		if start < 0 {
			break
		}
		start += pos
		end := strings.Index(result[start:], "}}")
		if end < 0 {
			return "", fmt.Errorf("unterminated variable reference in %q", s)
		}
		end += start + 2
		value, err := resolve(strings.TrimSpace(result[start+2:end-2]), vars)
		if err != nil {
			return "", err
		}
		text := value.StringValue()
		if value.Type() != ldvalue.StringType {
			text = value.JSONString()
		}
		result = result[:start] + text + result[end:]
		pos = start + len(text)
	}
	return result, nil
}

// expandBody substitutes variables in every string within a request body. A string that
// consists of nothing but one reference is replaced by the variable's value with its JSON
// type intact, so "{{id}}" can become the number 11.
func expandBody(body interface{}, vars map[string]ldvalue.Value) (interface{}, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		s, err := expandString(string(b), vars)
		return []byte(s), err
	case json.RawMessage:
		s, err := expandString(string(b), vars)
		return json.RawMessage(s), err
	case string, bool, float64, int, []interface{}, map[string]interface{}:
		return expandTree(b, vars)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return expandTree(tree, vars)
}

func expandTree(node interface{}, vars map[string]ldvalue.Value) (interface{}, error) {
	switch n := node.(type) {
	case string:
		if m := wholeTemplateRegex.FindStringSubmatch(n); m != nil {
			value, err := resolve(m[1], vars)
			if err != nil {
				return nil, err
			}
			return value.AsArbitraryValue(), nil
		}
		return expandString(n, vars)
	case []interface{}:
		ret := make([]interface{}, 0, len(n))
		for _, item := range n {
			x, err := expandTree(item, vars)
			if err != nil {
				return nil, err
			}
			ret = append(ret, x)
		}
		return ret, nil
	case map[string]interface{}:
		ret := make(map[string]interface{}, len(n))
		for k, item := range n {
			x, err := expandTree(item, vars)
			if err != nil {
				return nil, err
			}
			ret[k] = x
		}
		return ret, nil
	}
	return node, nil
}

func resolve(name string, vars map[string]ldvalue.Value) (ldvalue.Value, error) {
	if strings.HasPrefix(name, "env.") {
		if v, ok := os.LookupEnv(strings.TrimPrefix(name, "env.")); ok {
			return ldvalue.String(v), nil
		}
		return ldvalue.Null(), &UnresolvedVariableError{Name: name}
	}
	if v, ok := vars[name]; ok {
		return v, nil
	}
	return ldvalue.Null(), &UnresolvedVariableError{Name: name}
}
