package goroutine

import (
	"runtime/debug"
)

// Logger is the minimal logging contract for panic reporting.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler runs goroutines with panic recovery so a misbehaving
// fan-out callback cannot take down the process.
type RecoveryHandler struct {
	logger Logger
}

func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo runs fn in a goroutine and logs any panic with its stack.
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				rh.logger.Errorf("panic in goroutine: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
