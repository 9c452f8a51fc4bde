// Package harness provides scenario-driven tests for WHERE clause lowering.
//
// A scenario pairs an expression tree with the clause it must lower to and,
// optionally, the rows that clause must select from a seeded in-memory
// SQLite table.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: adults
//	description: "age >= 18 selects adults"
//	table: person
//	setup:
//	  - CREATE TABLE person (name text, age integer)
//	  - INSERT INTO person VALUES ('Fred', 30), ('Tim', 12)
//	where:
//	  return:
//	    boolean:
//	      binary:
//	        left: {property: age}
//	        op: ">="
//	        right: {constant: 18}
//	expect:
//	  text: "age >= ?"
//	  params: [18]
//	  count: 1
//	  rows:
//	    - {name: Fred}
//
// Scenarios for trees that must not lower set expect.error to a substring
// of the expected error instead.
//
// # Golden Files
//
// AssertGolden snapshots a Result as canonical JSON under testdata/golden.
// Regenerate with:
//
//	go test ./internal/harness -update
package harness
