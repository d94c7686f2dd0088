package automaxprocs

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/auditforge/paygate/pkg/logger"
	"github.com/auditforge/paygate/pkg/logger/slogx"
)

var undo func()

// Init sets GOMAXPROCS to match the Linux container CPU quota, if any.
// No-op on non-Linux systems and when no quota is configured.
func Init() error {
	log := logger.With(
		slogx.String("package", "automaxprocs"),
		slogx.Int("prev_maxprocs", Current()),
	)

	revert, err := maxprocs.Set(
		maxprocs.Logger(func(format string, v ...any) {
			log.Info(fmt.Sprintf(format, v...))
		}),
		maxprocs.Min(1),
	)
	if err != nil {
		return errors.WithStack(err)
	}
	undo = revert
	return nil
}

// Undo restores GOMAXPROCS to its value before Init.
func Undo() {
	if undo != nil {
		undo()
	}
}

// Current returns the current value of GOMAXPROCS.
func Current() int {
	return runtime.GOMAXPROCS(0)
}
