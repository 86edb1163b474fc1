package schemagen

import (
	"errors"
	"fmt"

	"github.com/reoring/schemagen/i18n"
)

// Error codes (exported consts so callers can switch on them)
const (
	CodeInvalidForSchema    = "invalid-for-json-schema"
	CodeAlreadyUsed         = "json-schema-already-used"
	CodeSchemaExtraConflict = "json-schema-extra-conflict"
	CodeFailedToSimplify    = "failed-to-simplify"
	CodeUnknownHandlerType  = "unknown-handler-type"
	CodeMissingHandler      = "missing-handler"
)

// InvalidForSchemaError reports a construct that has no JSON Schema
// representation. Union choices that fail this way are skipped with a
// warning; anywhere else the error aborts generation.
type InvalidForSchemaError struct {
	Detail string
	Err    error
}

func (e *InvalidForSchemaError) Error() string {
	return "cannot generate a JSON Schema for " + e.Detail
}

func (e *InvalidForSchemaError) Unwrap() error { return e.Err }

// UserError reports caller misuse, such as reusing a Generator.
type UserError struct {
	Code    string
	Message string
}

func (e *UserError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Is matches any *UserError with the same code, so errors.Is works against
// ErrAlreadyUsed.
func (e *UserError) Is(target error) bool {
	var u *UserError
	if errors.As(target, &u) {
		return u.Code == e.Code
	}
	return false
}

// ErrAlreadyUsed is returned by a second Generate or GenerateDefinitions
// call on the same Generator.
var ErrAlreadyUsed = &UserError{
	Code:    CodeAlreadyUsed,
	Message: i18n.New("en").Message(CodeAlreadyUsed, nil),
}

// SimplifyError reports that definition renaming did not reach a fixed
// point within the configured number of rounds.
type SimplifyError struct {
	Rounds int
}

func (e *SimplifyError) Error() string {
	return fmt.Sprintf("failed to simplify the JSON schema definitions after %d rounds", e.Rounds)
}

func invalidf(format string, args ...any) error {
	return &InvalidForSchemaError{Detail: fmt.Sprintf(format, args...)}
}

// IsInvalidForSchema reports whether err (or any error it wraps) is an
// InvalidForSchemaError.
func IsInvalidForSchema(err error) bool {
	var e *InvalidForSchemaError
	return errors.As(err, &e)
}
