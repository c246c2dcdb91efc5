// Package invariants gates expensive consistency checks behind a build tag.
//
// Build or test with `-tags invariants` (or `-race`) to turn the checks on.
// Without the tag every guarded block is eliminated as dead code.
package invariants
