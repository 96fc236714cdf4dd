package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})

	Logf("hello %s", "world")
	assert.Equal(t, "hello world", captured)

	// nil installs a no-op logger rather than panicking
	SetLogger(nil)
	Logf("dropped %d", 1)
	assert.Equal(t, "hello world", captured)
}

func TestDebugfGatedByFlag(t *testing.T) {
	defer SetLogger(nil)
	defer func() { Debug = false }()

	var calls int
	SetLogger(func(format string, v ...interface{}) { calls++ })

	Debug = false
	Debugf("frame %d", 1)
	assert.Equal(t, 0, calls)

	Debug = true
	Debugf("frame %d", 2)
	assert.Equal(t, 1, calls)
}
