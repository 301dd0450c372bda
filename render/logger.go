package render

import (
	"log/slog"

	"github.com/gogpu/typeset"
)

// slogger returns the module logger, so one typeset.SetLogger call
// configures rendering as well.
func slogger() *slog.Logger {
	return typeset.Logger()
}
