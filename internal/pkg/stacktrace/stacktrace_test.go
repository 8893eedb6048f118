package stacktrace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const dump = `goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gotp/internal/pkg/goroutine.(*Manager).Go.func1.1()
	/src/gotp/internal/pkg/goroutine/goroutine.go:79 +0x65
panic({0x1029a40?, 0x1381c30?})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/gotp/internal/notification/usecase.(*Usecase).Process(...)
	/src/gotp/internal/notification/usecase/process.go:31
`

func TestInternalPaths(t *testing.T) {
	assert.Equal(t, []string{
		"internal/pkg/goroutine/goroutine.go:79",
		"internal/notification/usecase/process.go:31",
	}, InternalPaths([]byte(dump)))

	assert.Empty(t, InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:9 +0x1\n")))
}

func TestCurrent(t *testing.T) {
	paths, ok := Current().([]string)
	if assert.True(t, ok) {
		assert.Contains(t, strings.Join(paths, "\n"), "internal/pkg/stacktrace/stacktrace_test.go:")
	}
}
