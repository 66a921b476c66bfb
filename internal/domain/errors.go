// README: Error taxonomy shared by every module and mapped to HTTP statuses at the edge.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError rejects input before any mutation reaches the store.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

// GuardRefusal is returned when a role transition is blocked by live requests.
// Blocking lists the entities the user has to resolve first.
type GuardRefusal struct {
	From     Role
	To       Role
	Reason   string
	Blocking []string
}

func (e GuardRefusal) Error() string {
	msg := fmt.Sprintf("cannot change role from %s to %s", e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.Blocking) > 0 {
		msg += " (" + strings.Join(e.Blocking, "; ") + ")"
	}
	return msg
}

// StoreFailure wraps any persistence error. The message of the underlying error
// is surfaced unchanged and the operation is considered not applied.
type StoreFailure struct {
	Op  string
	Err error
}

func (e StoreFailure) Error() string {
	if e.Err == nil {
		return e.Op + ": store failure"
	}
	return e.Err.Error()
}

func (e StoreFailure) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

type ConflictError struct {
	Resource string
	Msg      string
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg == "" {
		return "forbidden"
	}
	return e.Msg
}

// MalformedError reports a stored enum value that does not parse.
type MalformedError struct {
	Field string
	Value string
}

func (e MalformedError) Error() string {
	return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
}

// Fail wraps err as a StoreFailure unless it already carries a domain meaning.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomain(err) {
		return err
	}
	return StoreFailure{Op: op, Err: err}
}

func isDomain(err error) bool {
	return IsValidation(err) || IsGuardRefusal(err) || IsStoreFailure(err) || IsNotFound(err) ||
		IsConflict(err) || IsForbidden(err) || IsMalformed(err)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsGuardRefusal(err error) bool {
	var target GuardRefusal
	return errors.As(err, &target)
}

func IsStoreFailure(err error) bool {
	var target StoreFailure
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsMalformed(err error) bool {
	var target MalformedError
	return errors.As(err, &target)
}
