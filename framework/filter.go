package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

// AsFilter matches MustMatch patterns the same way "go test -run" does: each pattern is
// split on slashes, and each element is matched against the corresponding element of the
// test path. That way a parent group is still run when only some of its subtests match.
// MustNotMatch patterns are matched against the whole test path.
func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatchPath(id)) &&
		!r.MustNotMatch.AnyMatch(id.String())
}

type RegexList struct {
	patterns []*regexp.Regexp
	levels   [][]*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	var levels []*regexp.Regexp
	for _, part := range strings.Split(value, "/") {
		lrx, err := regexp.Compile(part)
		if err != nil {
			return fmt.Errorf("invalid regex %q in %q: %w", part, value, err)
		}
		levels = append(levels, lrx)
	}
	r.patterns = append(r.patterns, rx)
	r.levels = append(r.levels, levels)
	return nil
}

// Patterns returns the original pattern strings.
func (r RegexList) Patterns() []string {
	ret := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		ret = append(ret, p.String())
	}
	return ret
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// AnyMatchPath returns true if any pattern matches the test path element by element.
func (r RegexList) AnyMatchPath(id TestID) bool {
	for _, levels := range r.levels {
		matched := true
		for i, name := range id.Path {
			if i >= len(levels) {
				break
			}
			if !levels[i].MatchString(name) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}
}
