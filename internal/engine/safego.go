package engine

import (
	"runtime/debug"

	"github.com/cjliu20152/qiskit/pkg/logger"
)

// safeGo runs fn in a goroutine with panic recovery. A panicking job
// must never take the daemon down; the recovered value is logged with a
// stack trace and handed to onPanic so the job can be failed cleanly.
func safeGo(l logger.Logger, context string, onPanic func(r interface{}), fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if l != nil {
					l.Error("PANIC [%s]: %v\n%s", context, r, debug.Stack())
				}
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn()
	}()
}
