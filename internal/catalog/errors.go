package catalog

import "errors"

var (
	// ErrDuplicateSource indicates the identity triple already exists. The
	// offending transaction is rolled back; exactly one row survives.
	ErrDuplicateSource = errors.New("duplicate source")

	// ErrNotFound indicates no record matches the resolved identity.
	ErrNotFound = errors.New("no matching record")

	// ErrMigrationUnsupported indicates the store belongs to a schema
	// generation this build cannot upgrade. Fatal at startup.
	ErrMigrationUnsupported = errors.New("migration unsupported")
)
