package core

import (
	"errors"
	"fmt"
	"strings"

	apperrors "exodash/internal/errors"
)

// ErrSuperseded is returned by a submission whose job or form was reset while the
// request was in flight. The late response has been discarded.
var ErrSuperseded = errors.New("request superseded by reset")

// UnknownMissionError reports a mission identifier outside the supported set.
type UnknownMissionError struct {
	Mission string
}

func (e *UnknownMissionError) Error() string {
	return fmt.Sprintf("unknown mission %q", e.Mission)
}

func (e *UnknownMissionError) Code() string { return apperrors.CodeUnknownMission }

// FieldValidationError reports a single field whose raw input does not fit its descriptor.
type FieldValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("field %s: %s (got %q)", e.Field, e.Reason, e.Value)
}

func (e *FieldValidationError) Code() string { return apperrors.CodeFieldValidation }

// Field validation reasons. Callers localize on these, not on Error().
const (
	ReasonNotNumeric   = "not a number"
	ReasonOutOfRange   = "out of range"
	ReasonNotAnOption  = "not an allowed option"
	ReasonUnknownField = "unknown field"
	ReasonEmpty        = "empty value"
)

// IncompleteRecordError lists the schema features that are still unset.
type IncompleteRecordError struct {
	Mission string
	Missing []string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("%s record is missing %d feature(s): %s", e.Mission, len(e.Missing), strings.Join(e.Missing, ", "))
}

func (e *IncompleteRecordError) Code() string { return apperrors.CodeIncompleteRecord }

// AlreadyInProgressError rejects a mutation while a classification request is outstanding.
type AlreadyInProgressError struct {
	Operation string
}

func (e *AlreadyInProgressError) Error() string {
	return fmt.Sprintf("%s rejected: a classification request is already in progress", e.Operation)
}

func (e *AlreadyInProgressError) Code() string { return apperrors.CodeAlreadyInProgress }

// CsvParseError carries the 1-based data row (header excluded) that aborted a parse.
type CsvParseError struct {
	Row     int
	Message string
}

func (e *CsvParseError) Error() string {
	return fmt.Sprintf("csv row %d: %s", e.Row, e.Message)
}

func (e *CsvParseError) Code() string { return apperrors.CodeCsvParse }

// UnsupportedFormatError rejects an upload whose declared type is not delimited text.
type UnsupportedFormatError struct {
	MimeType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q: upload a CSV file", e.MimeType)
}

func (e *UnsupportedFormatError) Code() string { return apperrors.CodeUnsupportedFormat }

// NotReadyError rejects an operation that the current state does not allow.
type NotReadyError struct {
	Operation string
	State     string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s not available in state %s", e.Operation, e.State)
}

func (e *NotReadyError) Code() string { return apperrors.CodeNotReady }
