package report

import (
	"errors"
	"fmt"
	"os"
)

// ErrorKind classifies a compile error.  It must be one of the enumerated error
// kinds below.
type ErrorKind int

// Enumeration of error kinds.
const (
	KindParse         ErrorKind = iota // Malformed source text.
	KindType                           // Ill-formed declarations.
	KindUnresolved                     // Unresolved identifier.
	KindUnknownType                    // Type with no backend representation.
	KindUnsupported                    // Recognized but unimplemented feature.
	KindExec                           // Compile-time execution failure.
	KindInternalState                  // Broken compiler invariant.
)

var errorKindNames = [...]string{
	KindParse:         "parse error",
	KindType:          "type error",
	KindUnresolved:    "unresolved identifier",
	KindUnknownType:   "unknown type",
	KindUnsupported:   "unsupported feature",
	KindExec:          "execution error",
	KindInternalState: "internal state error",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CompileError is an error in a single compilation unit.  These errors are
// local to their unit: they never abort the compilation of sibling units.
type CompileError struct {
	// The kind of the error.
	Kind ErrorKind

	// The name of the unit the error occurred in.  This may be empty if the
	// error has not yet bubbled up to a unit boundary.
	File string

	// The span over which the error occurs.  This may be nil.
	Span *TextSpan

	// The error message.
	Message string
}

func (ce *CompileError) Error() string {
	switch {
	case ce.File == "":
		return fmt.Sprintf("%s: %s", ce.Kind, ce.Message)
	case ce.Span == nil:
		return fmt.Sprintf("%s: %s: %s", ce.File, ce.Kind, ce.Message)
	default:
		return fmt.Sprintf("%s:%d:%d: %s: %s", ce.File, ce.Span.StartLine+1, ce.Span.StartCol+1, ce.Kind, ce.Message)
	}
}

// Raise creates a new compile error.  Passes which abort on the first error
// panic with the result and recover it with CatchErrors at the unit boundary.
func Raise(kind ErrorKind, span *TextSpan, msg string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Span: span, Message: fmt.Sprintf(msg, args...)}
}

// IsKind returns whether err wraps a compile error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}

	return false
}

// -----------------------------------------------------------------------------

// CatchErrors catches any errors thrown by a `panic` during a stage of
// compilation and stores them in errp.  Compile errors are stamped with the
// unit name.  Any other panic value is converted into an internal state error
// and reported as an internal compiler error.
// NB: This function must ALWAYS be deferred.
func CatchErrors(file string, errp *error) {
	x := recover()
	if x == nil {
		return
	}

	switch v := x.(type) {
	case *CompileError:
		if v.File == "" {
			v.File = file
		}
		*errp = v
	case error:
		*errp = &CompileError{Kind: KindInternalState, File: file, Message: v.Error()}
		ReportICE("%s: %s", file, v)
	default:
		*errp = &CompileError{Kind: KindInternalState, File: file, Message: fmt.Sprint(v)}
		ReportICE("%s: %v", file, v)
	}
}

// -----------------------------------------------------------------------------

// ReportICE reports an internal compiler error.  These are errors that
// specifically result for a bug or unexpected condition occurring with the
// compiler: they are not intended to ever happen.  They are displayed at every
// log level except silent.
func ReportICE(message string, args ...interface{}) {
	if enabled(LogLevelError) {
		defer rep.m.Unlock()

		rep.errorCount++
		displayICE(fmt.Sprintf(message, args...))
	}
}

// ReportFatal reports a fatal error and exits.  These are expected errors that
// generally result from invalid configuration of some form: missing files,
// bad profiles, missing tools (eg. `llc`), etc.
func ReportFatal(message string, args ...interface{}) {
	if enabled(LogLevelError) {
		displayFatal(fmt.Sprintf(message, args...))
		rep.m.Unlock()
	}

	os.Exit(1)
}

// ReportCompileError reports a compilation error: ie. erroneous input code.
// Errors which are not compile errors are reported as standard errors.
func ReportCompileError(err error) {
	if enabled(LogLevelError) {
		defer rep.m.Unlock()

		rep.errorCount++

		var ce *CompileError
		if errors.As(err, &ce) {
			displayCompileMessage("error", ce.File, ce.Span, fmt.Sprintf("%s: %s", ce.Kind, ce.Message))
		} else {
			displayStdError(err)
		}
	}
}

// ReportCompileWarning reports a compilation warning.
func ReportCompileWarning(file string, span *TextSpan, message string, args ...interface{}) {
	if enabled(LogLevelWarn) {
		defer rep.m.Unlock()

		rep.warnCount++
		displayCompileMessage("warning", file, span, fmt.Sprintf(message, args...))
	}
}
