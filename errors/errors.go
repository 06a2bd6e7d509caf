package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild    Phase = "build"    // builder API
	PhaseDecode   Phase = "decode"   // words to entries
	PhaseEncode   Phase = "encode"   // entries to words
	PhaseValidate Phase = "validate" // structural validation
	PhaseResolve  Phase = "resolve"  // id lookup through the entry table
	PhaseQuery    Phase = "query"    // accessor on a type entry
	PhaseAssemble Phase = "assemble" // text assembly
	PhaseLoad     Phase = "load"     // module loading
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedStream     Kind = "malformed_stream"
	KindInvalidField        Kind = "invalid_field"
	KindUnresolvedReference Kind = "unresolved_reference"
	KindShapeMismatch       Kind = "shape_mismatch"
	KindIncomplete          Kind = "incomplete"
	KindDuplicateID         Kind = "duplicate_id"
	KindUnsupported         Kind = "unsupported"
	KindInvalidInput        Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
	Path   []string
	ID     uint32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	subject := e.Op != "" || e.ID != 0
	if subject {
		b.WriteString(": ")
		if e.Op != "" {
			b.WriteString(e.Op)
			if e.ID != 0 {
				b.WriteByte(' ')
			}
		}
		if e.ID != 0 {
			b.WriteByte('%')
			b.WriteString(strconv.FormatUint(uint64(e.ID), 10))
		}
	}

	if e.Detail != "" {
		if subject {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of the first *Error found in err's chain.
// Joined errors are searched depth first. The empty Kind means none was found.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e.Kind == kind {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if IsKind(inner, kind) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return IsKind(x.Unwrap(), kind)
	}
	return false
}

// Join combines errs into one error; nil entries are discarded and the
// result is nil when every entry is nil.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Op sets the opcode name of the offending entry
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// ID sets the result id of the offending entry
func (b *Builder) ID(id uint32) *Builder {
	b.err.ID = id
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MalformedStream creates an error for a word stream whose framing is broken:
// premature end, zero word count, or a declared count that disagrees with the
// fields actually consumed.
func MalformedStream(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedStream,
		Detail: detail,
	}
}

// InvalidField creates an error for a numeric field outside its valid range
func InvalidField(phase Phase, op string, id uint32, field string, value any, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidField,
		Op:     op,
		ID:     id,
		Path:   []string{field},
		Value:  value,
		Detail: detail,
	}
}

// InvalidEnum creates an error for a raw value that is not a member of its enum
func InvalidEnum(phase Phase, op string, field string, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidField,
		Op:     op,
		Path:   []string{field},
		Value:  value,
		Detail: fmt.Sprintf("invalid %s value %v", enumType, value),
	}
}

// UnresolvedReference creates an error for an id field that names no registered entry
func UnresolvedReference(phase Phase, op string, id uint32, field string, ref uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnresolvedReference,
		Op:     op,
		ID:     id,
		Path:   []string{field},
		Value:  ref,
		Detail: fmt.Sprintf("%%%d does not name a registered entry", ref),
	}
}

// ShapeMismatch creates an error for an accessor or reference applied to the wrong kind
func ShapeMismatch(phase Phase, op string, id uint32, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindShapeMismatch,
		Op:     op,
		ID:     id,
		Detail: "expected " + want,
	}
}

// Incomplete creates an error for an entry used before all of its fields are populated
func Incomplete(phase Phase, op string, id uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIncomplete,
		Op:     op,
		ID:     id,
		Detail: "entry is not complete",
	}
}

// DuplicateID creates an error for a result id defined twice
func DuplicateID(phase Phase, op string, id uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateID,
		Op:     op,
		ID:     id,
		Detail: fmt.Sprintf("id %%%d is already defined", id),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a text assembly error at the given source line
func ParseFailed(line int, detail string) *Error {
	return &Error{
		Phase:  PhaseAssemble,
		Kind:   KindInvalidInput,
		Path:   []string{"line " + strconv.Itoa(line)},
		Detail: detail,
	}
}
