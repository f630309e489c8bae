package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = New("sentinel")

func TestWrap_PreservesSentinel(t *testing.T) {
	wrapped := Wrap(errSentinel, "store insert")

	assert.True(t, Is(wrapped, errSentinel))
	assert.Equal(t, "store insert: sentinel", wrapped.Error())
	assert.Contains(t, fmt.Sprintf("%+v", wrapped), "errors_test.go")
}

func TestWrap_NilStaysNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "nothing"))
	assert.NoError(t, WithStack(nil))
}

type codedError struct{ code string }

func (e *codedError) Error() string { return e.code }

func TestAs_FindsTypedErrorThroughWrap(t *testing.T) {
	err := Wrapf(&codedError{code: "E1"}, "attempt %d", 3)

	var target *codedError
	assert.True(t, As(err, &target))
	assert.Equal(t, "E1", target.code)
}
