// Package sym defines canonical symbols for tecflow pipeline phases and
// system markers. These symbols are stable across CLI output and logs.
package sym

// Pipeline phase symbols.
const (
	Fetch = "⇣" // acquisition: pull artifacts from the operator
	Check = "⊨" // validation: structural and type checks
	Load  = "⇪" // persistence: rows into the target relation
)

// System markers.
const (
	DB    = "⛁" // database operations
	Pulse = "≈" // recurring runner
	Feed  = "⌬" // operator feed (locator, cycle catalog)
)
