package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownCommandError(t *testing.T) {
	err := &UnknownCommandError{Command: "rekit.fly"}
	assert.Equal(t, `unknown command "rekit.fly"`, err.Error())
}

func TestCommandNotApplicableError(t *testing.T) {
	err := &CommandNotApplicableError{Command: "rekit.removeFeature", Path: "/proj/src"}
	assert.Equal(t, `command "rekit.removeFeature" is not available for "/proj/src"`, err.Error())
}
