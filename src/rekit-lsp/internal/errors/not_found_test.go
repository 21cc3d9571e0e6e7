package errors

import (
	"fmt"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUIDNotFoundError(t *testing.T) {
	err := &UUIDNotFoundError{UUID: uuid.Nil}
	assert.Equal(t, `session "00000000-0000-0000-0000-000000000000" not found`, err.Error())
}

func TestNoSessionFoundError(t *testing.T) {
	err := &NoSessionFoundError{}
	assert.Equal(t, "No session found in context", err.Error())
}

func TestNotAProjectError(t *testing.T) {
	err := &NotAProjectError{Path: "/tmp/foo"}
	assert.Equal(t, `"/tmp/foo" is not inside a Rekit project`, err.Error())
}

func TestInterpreterNotFound(t *testing.T) {
	notFound := &InterpreterNotFoundError{Interpreter: "node", SearchPath: "/usr/bin:/bin"}
	assert.Contains(t, notFound.Error(), "node binary could not be found in PATH")
	assert.Contains(t, notFound.Error(), "PATH is: /usr/bin:/bin")

	tests := []struct {
		name   string
		err    error
		wantOK bool
	}{
		{
			name:   "direct",
			err:    notFound,
			wantOK: true,
		},
		{
			name:   "wrapped",
			err:    fmt.Errorf("launching: %w", notFound),
			wantOK: true,
		},
		{
			name:   "random error",
			err:    New("err"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			result, ok := InterpreterNotFound(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "/usr/bin:/bin", result.SearchPath)
			} else {
				assert.Nil(t, result)
			}
		})
	}
}
