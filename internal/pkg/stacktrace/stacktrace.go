// Package stacktrace trims goroutine dumps down to the frames that belong to
// this module so panic logs stay readable.
package stacktrace

import (
	"runtime/debug"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of
// stack that lives under an internal/ directory, innermost first.
func InternalPaths(stack []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(stack), "\n") {
		// file lines are tab-indented: "\t/abs/path/file.go:42 +0x1d"
		if !strings.HasPrefix(line, "\t") {
			continue
		}
		loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		idx := strings.Index(loc, marker)
		if idx == -1 || !strings.Contains(loc, ".go:") {
			continue
		}
		paths = append(paths, loc[idx+1:])
	}
	return paths
}

// Current returns the module frames of the calling goroutine, or the raw
// dump when none are found.
func Current() any {
	stack := debug.Stack()
	if paths := InternalPaths(stack); len(paths) > 0 {
		return paths
	}
	return string(stack)
}
