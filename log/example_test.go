package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/pyexpr/log"
)

func Example() {
	logger := log.Make(os.Stdout, log.WithTimeLayout(""))
	logger.Info("evaluated", slog.String("source", "1 + 1"), slog.Int("result", 2))

	// Output:
	// level=INFO msg=evaluated source="1 + 1" result=2
}

func ExampleLogger_Wrap() {
	logger := log.Make(os.Stdout, log.WithTimeLayout(""))
	verbose := logger.Wrap(log.WithLevel(log.LevelTrace))

	logger.Trace("dropped")
	verbose.Trace("kept")

	// Output:
	// level=TRACE msg=kept
}
