// Package rc defines the result-code vocabulary shared across the resolver,
// plan generator, and expression tree — the boundary error codes named in
// spec section 6/7.
package rc

import "errors"

// RC is a result code. SUCCESS is the zero value so a freshly-declared RC
// never silently looks like a failure in a log line.
type RC int

const (
	SUCCESS RC = iota
	INVALID_ARGUMENT
	SQL_SYNTAX
	SCHEMA_TABLE_NOT_EXIST
	SCHEMA_FIELD_MISSING
	AGGR_FUNC_NOT_VALID
	SELECT_EXPR_INVALID_ARGUMENT
	EXPRESSION_LIST_NULL
	RECORD_EOF
	UNIMPLEMENT
	INTERNAL
)

func (c RC) String() string {
	switch c {
	case SUCCESS:
		return "SUCCESS"
	case INVALID_ARGUMENT:
		return "INVALID_ARGUMENT"
	case SQL_SYNTAX:
		return "SQL_SYNTAX"
	case SCHEMA_TABLE_NOT_EXIST:
		return "SCHEMA_TABLE_NOT_EXIST"
	case SCHEMA_FIELD_MISSING:
		return "SCHEMA_FIELD_MISSING"
	case AGGR_FUNC_NOT_VALID:
		return "AGGR_FUNC_NOT_VALID"
	case SELECT_EXPR_INVALID_ARGUMENT:
		return "SELECT_EXPR_INVALID_ARGUMENT"
	case EXPRESSION_LIST_NULL:
		return "EXPRESSION_LIST_NULL"
	case RECORD_EOF:
		return "RECORD_EOF"
	case UNIMPLEMENT:
		return "UNIMPLEMENT"
	case INTERNAL:
		return "INTERNAL"
	default:
		return "UNKNOWN_RC"
	}
}

// Error binds an RC to a human-readable message. It is the error type
// every package in this module returns at its public boundary, so callers
// can recover the code with errors.As.
type Error struct {
	Code RC
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Msg
}

// New builds an *Error for code with a formatted message.
func New(code RC, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Of reports the RC carried by err, or INTERNAL if err doesn't carry one.
func Of(err error) RC {
	if err == nil {
		return SUCCESS
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return INTERNAL
}

// ErrRecordEOF is the sentinel control-flow error a physical node's Next
// returns on exhaustion. It must never cross the resolver/plan boundary as
// a user-visible error — only the loops that drain a physical node observe
// it (pkg/subq's fetch loop, the REPL's row printer, and internal/physmem's
// own operators).
var ErrRecordEOF = &Error{Code: RECORD_EOF, Msg: "record eof"}
