package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

var (
	// MissingNameError reports that an add command was invoked without an artifact name.
	MissingNameError = New("a name is required")
	// MissingPathError reports that a command was invoked without a selected path.
	MissingPathError = New("a selected path is required")
)

// IsBadRequest reports whether the error is a bad request from the caller.
func IsBadRequest(e error) bool {
	if stderr.Is(e, MissingNameError) || stderr.Is(e, MissingPathError) {
		return true
	}
	var notApplicable *CommandNotApplicableError
	return stderr.As(e, &notApplicable)
}
