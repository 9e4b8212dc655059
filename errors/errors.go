// Package errors provides error handling for tecflow.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints surfaced to operators on fatal failures
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrEmptyArtifact) {
//	    // skip the artifact
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors for use across tecflow.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNoData indicates the operator returned a non-CSV body for a
	// (gas day, cycle) slot. This is an expected absence, not a failure:
	// a cycle that has not posted yet answers with an HTML page.
	ErrNoData = New("no data posted for slot")

	// ErrEmptyArtifact indicates a CSV artifact with a header but zero data rows
	ErrEmptyArtifact = New("empty artifact")

	// ErrSchemaRejected indicates an artifact failed structural validation
	// (missing target columns). The artifact is skipped, the run continues.
	ErrSchemaRejected = New("schema rejected")

	// ErrDatabaseUnavailable indicates the target database cannot be reached.
	// This is the one fatal category: with loading enabled no work can be
	// persisted, so it must surface before any fetch begins.
	ErrDatabaseUnavailable = New("database unavailable")
)
