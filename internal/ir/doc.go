// Package ir provides the literal value types bound as SQL parameters.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Literal is sealed: Null, String, Int, Float, Bool
//   - Integers are always int64
//   - Canonical JSON (MarshalCanonical) is the only encoding used for hashing
package ir
