package errors

import "fmt"

// UnknownCommandError indicates that workspace/executeCommand named a command this server does not provide.
type UnknownCommandError struct {
	Command string
}

// Error is an implementation of the error interface.
func (n *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", n.Command)
}

// CommandNotApplicableError indicates that the selected path does not classify as any category the command accepts.
type CommandNotApplicableError struct {
	Command string
	Path    string
}

// Error is an implementation of the error interface.
func (n *CommandNotApplicableError) Error() string {
	return fmt.Sprintf("command %q is not available for %q", n.Command, n.Path)
}
