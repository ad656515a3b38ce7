package store

import (
	"fmt"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with the key database.
// Get and Set report a RetCode alongside the error so callers can
// distinguish "success with write" from "success without write".
type IStore interface {
	// Get reads the keyset at or below root. RetError with a non-nil error
	// signals a read failure, RetChanged a successful read.
	Get(root string) (*kdb.KeySet, RetCode, error)
	// Set writes the keyset as the new content at or below root. Keys below
	// root that are missing from ks are removed. Returns RetChanged if the
	// stored state changed, RetNoChange otherwise.
	Set(ks *kdb.KeySet, root string) (RetCode, error)
	// CalculateDiff compares ks against the currently stored content below
	// root without writing anything.
	CalculateDiff(ks *kdb.KeySet, root string) (Diff, error)
	// Warnings drains the non-fatal diagnostics accumulated since the last
	// call. Warnings never abort an operation.
	Warnings() []Warning
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

// RetCode is the tri-state result of a store access.
type RetCode int

const (
	RetError    RetCode = -1 // the access failed
	RetNoChange RetCode = 0  // success, nothing was written
	RetChanged  RetCode = 1  // success, state was written
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// ErrCode classifies store and engine failures.
type ErrCode int

const (
	ErrCReadFailure ErrCode = iota + 1
	ErrCWriteFailure
	ErrCMountFailure
	ErrCUnmountFailure
	ErrCRecordingFailure
	ErrCTransactionFailure
)

func (c ErrCode) String() string {
	switch c {
	case ErrCReadFailure:
		return "ReadFailure"
	case ErrCWriteFailure:
		return "WriteFailure"
	case ErrCMountFailure:
		return "MountFailure"
	case ErrCUnmountFailure:
		return "UnmountFailure"
	case ErrCRecordingFailure:
		return "RecordingFailure"
	case ErrCTransactionFailure:
		return "TransactionFailure"
	default:
		return "Unknown"
	}
}

// Error is a custom error type that wraps an ErrCode and a message.
type Error struct {
	Code ErrCode // The error classification
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KDBError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Diff
// --------------------------------------------------------------------------

// Diff describes how a keyset differs from the stored state. Modified and
// Removed carry the OLD key state, which allows a caller to reconstruct
// the pre-change snapshot from the current one.
type Diff struct {
	Added    *kdb.KeySet // keys that do not exist in the stored state
	Modified *kdb.KeySet // keys whose stored state differs (old state)
	Removed  *kdb.KeySet // stored keys missing from the keyset (old state)
}

// NewDiff creates an empty diff.
func NewDiff() Diff {
	return Diff{
		Added:    kdb.NewKeySet(),
		Modified: kdb.NewKeySet(),
		Removed:  kdb.NewKeySet(),
	}
}

// IsEmpty reports whether the diff contains no changes.
func (d Diff) IsEmpty() bool {
	return (d.Added == nil || d.Added.Len() == 0) &&
		(d.Modified == nil || d.Modified.Len() == 0) &&
		(d.Removed == nil || d.Removed.Len() == 0)
}

// --------------------------------------------------------------------------
// Warnings
// --------------------------------------------------------------------------

// Warning is a structured, non-fatal diagnostic surfaced to the caller.
type Warning struct {
	Module      string `json:"module"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
	Mountpoint  string `json:"mountpoint,omitempty"`
	File        string `json:"file,omitempty"`
	Line        int    `json:"line,omitempty"`
}
