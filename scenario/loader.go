package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"gopkg.in/yaml.v3"

	"github.com/restcontract/api-contract-tests/client"
	"github.com/restcontract/api-contract-tests/expect"
)

type scenarioFile struct {
	Name      string                 `yaml:"name"`
	Variables map[string]interface{} `yaml:"variables"`
	Steps     []stepFile             `yaml:"steps"`
}

type stepFile struct {
	Name     string            `yaml:"name"`
	Method   string            `yaml:"method"`
	Path     string            `yaml:"path"`
	Body     interface{}       `yaml:"body"`
	Headers  map[string]string `yaml:"headers"`
	Critical bool              `yaml:"critical"`
	Capture  map[string]string `yaml:"capture"`
	Expect   []expectFile      `yaml:"expect"`
}

// expectFile is one entry in a step's expect list. Exactly one field must be set.
type expectFile struct {
	Status        *int                   `yaml:"status"`
	StatusIn      []int                  `yaml:"status_in"`
	HasFields     []string               `yaml:"has_fields"`
	Equals        map[string]interface{} `yaml:"equals"`
	Exists        string                 `yaml:"exists"`
	Length        *int                   `yaml:"length"`
	LengthBetween []int                  `yaml:"length_between"`
	Unique        string                 `yaml:"unique"`
	Type          map[string]string      `yaml:"type"`
	Contains      map[string]string      `yaml:"contains"`
	Header        map[string]string      `yaml:"header"`
	ElapsedUnder  string                 `yaml:"elapsed_under"`
}

var valueTypes = map[string]ldvalue.ValueType{
	"null":    ldvalue.NullType,
	"bool":    ldvalue.BoolType,
	"boolean": ldvalue.BoolType,
	"number":  ldvalue.NumberType,
	"string":  ldvalue.StringType,
	"array":   ldvalue.ArrayType,
	"object":  ldvalue.ObjectType,
}

// LoadFile parses a YAML scenario file.
func LoadFile(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// LoadDir loads every .yaml or .yml file in a directory, in name order.
func LoadDir(dir string) ([]Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", dir, err)
	}
	var ret []Scenario
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		s, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
	}
	return ret, nil
}

// Parse decodes a scenario from YAML. Unknown keys are rejected.
func Parse(data []byte) (Scenario, error) {
	var f scenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Scenario{}, fmt.Errorf("parsing YAML: %w", err)
	}
	if f.Name == "" {
		return Scenario{}, fmt.Errorf("name is required")
	}
	if len(f.Steps) == 0 {
		return Scenario{}, fmt.Errorf("at least one step is required")
	}

	s := Scenario{Name: f.Name}
	if len(f.Variables) > 0 {
		s.Variables = make(map[string]ldvalue.Value, len(f.Variables))
		for k, v := range f.Variables {
			s.Variables[k] = ldvalue.FromJSONMarshal(v)
		}
	}
	for i, sf := range f.Steps {
		step, err := sf.toStep()
		if err != nil {
			return Scenario{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		s.Steps = append(s.Steps, step)
	}
	return s, nil
}

func (sf stepFile) toStep() (Step, error) {
	method := client.Method(strings.ToUpper(sf.Method))
	if !method.IsSupported() {
		return Step{}, fmt.Errorf("unsupported method %q", sf.Method)
	}
	if sf.Path == "" {
		return Step{}, fmt.Errorf("path is required")
	}
	step := Step{
		Name:     sf.Name,
		Method:   method,
		Path:     sf.Path,
		Body:     sf.Body,
		Headers:  sf.Headers,
		Critical: sf.Critical,
	}

	vars := make([]string, 0, len(sf.Capture))
	for v := range sf.Capture {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	for _, v := range vars {
		if err := expect.ValidatePath(sf.Capture[v]); err != nil {
			return Step{}, fmt.Errorf("capture %q: %w", v, err)
		}
		step.Capture = append(step.Capture, Capture{Var: v, Path: sf.Capture[v]})
	}

	for i, ef := range sf.Expect {
		exps, err := ef.toExpectations()
		if err != nil {
			return Step{}, fmt.Errorf("expect entry %d: %w", i+1, err)
		}
		step.Expect = append(step.Expect, exps...)
	}
	return step, nil
}

func (ef expectFile) toExpectations() ([]expect.Expectation, error) {
	var ret []expect.Expectation
	set := 0
	add := func(e ...expect.Expectation) {
		set++
		ret = append(ret, e...)
	}

	if ef.Status != nil {
		add(expect.StatusEquals(*ef.Status))
	}
	if len(ef.StatusIn) > 0 {
		add(expect.StatusIn(ef.StatusIn...))
	}
	if len(ef.HasFields) > 0 {
		add(expect.HasFields(ef.HasFields...))
	}
	if len(ef.Equals) > 0 {
		var es []expect.Expectation
		for _, path := range sortedKeys(ef.Equals) {
			es = append(es, expect.FieldEquals(path, ldvalue.FromJSONMarshal(ef.Equals[path])))
		}
		add(es...)
	}
	if ef.Exists != "" {
		add(expect.FieldExists(ef.Exists))
	}
	if ef.Length != nil {
		add(expect.IsSequenceOfLength(*ef.Length))
	}
	if ef.LengthBetween != nil {
		if len(ef.LengthBetween) != 2 || ef.LengthBetween[0] > ef.LengthBetween[1] {
			return nil, fmt.Errorf("length_between must be [min, max]")
		}
		add(expect.IsSequenceOfLengthBetween(ef.LengthBetween[0], ef.LengthBetween[1]))
	}
	if ef.Unique != "" {
		add(expect.AllUnique(ef.Unique))
	}
	if len(ef.Type) > 0 {
		var es []expect.Expectation
		for _, path := range sortedKeys(ef.Type) {
			kind, ok := valueTypes[ef.Type[path]]
			if !ok {
				return nil, fmt.Errorf("unknown type %q for %q", ef.Type[path], path)
			}
			es = append(es, expect.FieldIsType(path, kind))
		}
		add(es...)
	}
	if len(ef.Contains) > 0 {
		var es []expect.Expectation
		for _, path := range sortedKeys(ef.Contains) {
			es = append(es, expect.FieldContains(path, ef.Contains[path]))
		}
		add(es...)
	}
	if len(ef.Header) > 0 {
		var es []expect.Expectation
		for _, name := range sortedKeys(ef.Header) {
			es = append(es, expect.HeaderContains(name, ef.Header[name]))
		}
		add(es...)
	}
	if ef.ElapsedUnder != "" {
		d, err := time.ParseDuration(ef.ElapsedUnder)
		if err != nil {
			return nil, fmt.Errorf("elapsed_under: %w", err)
		}
		add(expect.ElapsedUnder(d))
	}

	if set != 1 {
		return nil, fmt.Errorf("each entry must have exactly one kind of expectation, found %d", set)
	}
	return ret, nil
}

func sortedKeys[V any](m map[string]V) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
