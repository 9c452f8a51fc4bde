// Package compiler decodes CUE filter specs into expression trees.
//
// A spec file declares named filters:
//
//	filter: adults: {
//		table:       "person"
//		description: "people of age"
//		where: return: boolean: binary: {
//			left:  property: "age"
//			op:    ">="
//			right: constant: 18
//		}
//	}
//
// Every expression node is a struct with exactly one key naming its kind
// (return, boolean, binary, property, constant, call, index, not). The
// compiler only checks shape; whether a tree can be lowered to SQL is
// decided by package where.
//
// Errors are *CompileError values carrying the dotted field path of the
// offending node and, when CUE knows it, a source position.
package compiler
