package errors

import (
	stderr "errors"
	"fmt"

	"github.com/gofrs/uuid"
)

// UUIDNotFoundError indicates that no session is stored under a UUID.
type UUIDNotFoundError struct {
	UUID uuid.UUID
}

// Error is an implementation of the error interface.
func (n *UUIDNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", n.UUID.String())
}

// NoSessionFoundError indicates that a session cannot be found within the context.
type NoSessionFoundError struct{}

// Error is an implementation of the error interface.
func (n *NoSessionFoundError) Error() string {
	return "No session found in context"
}

// NotAProjectError indicates that a path does not belong to a recognized Rekit project.
type NotAProjectError struct {
	Path string
}

// Error is an implementation of the error interface.
func (n *NotAProjectError) Error() string {
	return fmt.Sprintf("%q is not inside a Rekit project", n.Path)
}

// InterpreterNotFoundError indicates that the script interpreter is not present on the search path.
type InterpreterNotFoundError struct {
	Interpreter string
	SearchPath  string
}

// Error is an implementation of the error interface.
func (n *InterpreterNotFoundError) Error() string {
	return fmt.Sprintf("%s binary could not be found in PATH\nConsider setting the interpreter option of the rekit-lsp runner settings\n\nPATH is: %s", n.Interpreter, n.SearchPath)
}

// InterpreterNotFound returns the InterpreterNotFoundError and true if it is part of the error chain.
func InterpreterNotFound(e error) (*InterpreterNotFoundError, bool) {
	var nf *InterpreterNotFoundError
	if !stderr.As(e, &nf) {
		return nil, false
	}
	return nf, true
}
