// Package scenario runs multi-step workflows against the service under test.
//
// Values captured from one step's response are kept in a variable table that belongs to a
// single run, and are substituted into the path, headers, and body of later steps using
// {{name}} references. Scenarios can be built in Go or loaded from YAML files.
package scenario
