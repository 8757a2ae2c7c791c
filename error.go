package nanotpl

import (
	"fmt"

	jujuerrors "github.com/juju/errors"
)

// TemplateError is the base error interface every error kind the package
// returns satisfies. It lets callers do a single type-switch over
// *TemplateSyntaxError, *UndefinedVariableError, or fall back to this
// interface for anything else.
type TemplateError interface {
	error
	templateError()
}

// TemplateSyntaxError is raised by the lexer and parser. It carries a byte
// span into the original source; there is no recovery, parsing halts at
// the first syntax error encountered.
type TemplateSyntaxError struct {
	Message          string
	SourceIndexStart int
	SourceIndexStop  int
}

func (e *TemplateSyntaxError) templateError() {}

func (e *TemplateSyntaxError) Error() string {
	return fmt.Sprintf("[Syntax | %d:%d] %s", e.SourceIndexStart, e.SourceIndexStop, e.Message)
}

func newSyntaxError(msg string, start, stop int) *TemplateSyntaxError {
	return &TemplateSyntaxError{Message: msg, SourceIndexStart: start, SourceIndexStop: stop}
}

// UndefinedVariableError is raised by the VM, only under a strict undefined
// policy, when an Undefined value reaches RENDER. Output produced before
// the raise is discarded; see vmState.run. The compiled program carries no
// source positions, so SourceIndexStart and SourceIndexStop are 0 for
// errors raised during rendering.
type UndefinedVariableError struct {
	Name             string
	SourceIndexStart int
	SourceIndexStop  int
}

func (e *UndefinedVariableError) templateError() {}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("[UndefinedVariable | %d:%d] %q is undefined", e.SourceIndexStart, e.SourceIndexStop, e.Name)
}

// internalError wraps programmer errors: invalid opcode, a jump target out
// of range, operand-stack underflow. These are never part of the stable
// public error surface described in spec.md; they indicate a bug in the
// compiler or VM itself, so they're annotated with a juju/errors stack
// trace to help whoever is debugging the engine, not the template author.
type internalError struct {
	cause error
}

func (e *internalError) Error() string {
	return fmt.Sprintf("[Internal] %s", e.cause.Error())
}

func (e *internalError) Unwrap() error { return e.cause }

func newInternalError(format string, args ...any) *internalError {
	return &internalError{cause: jujuerrors.Annotatef(jujuerrors.New(fmt.Sprintf(format, args...)), "nanotpl vm")}
}

// wrapInternal traces an already-constructed error through juju/errors so
// ErrorStack(err) reports where inside the engine it originated, then
// lifts it into an internalError for the caller.
func wrapInternal(err error, context string) *internalError {
	return &internalError{cause: jujuerrors.Annotate(err, context)}
}
