package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed marks a migration whose statements did not apply.
	ErrMigrationFailed = errors.New("migration: execution failed")
	// ErrInvalidMigrationFile marks a file that is not NNN_name.sql or holds
	// no statements.
	ErrInvalidMigrationFile = errors.New("migration: invalid file")
	// ErrDuplicateVersion marks two files sharing one version prefix.
	ErrDuplicateVersion = errors.New("migration: duplicate version")
	// ErrChecksumMismatch marks an applied migration whose file was edited.
	ErrChecksumMismatch = errors.New("migration: checksum mismatch")
)

// Error records which migration step failed. File is empty for failures of
// the bookkeeping table itself.
type Error struct {
	Version string
	File    string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Version != "" && e.File != "":
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.File, e.Op, e.Err)
	case e.Version != "":
		return fmt.Sprintf("migration %s: %s: %v", e.Version, e.Op, e.Err)
	case e.File != "":
		return fmt.Sprintf("migration (%s): %s: %v", e.File, e.Op, e.Err)
	}
	return fmt.Sprintf("migration: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fileError(version, file, op string, err error) *Error {
	return &Error{Version: version, File: file, Op: op, Err: err}
}

func dbError(version, op string, err error) *Error {
	return &Error{Version: version, Op: op, Err: err}
}
