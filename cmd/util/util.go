package util

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/bioarchive/dsclient/pkg/errors"
)

// HandleFatalError prints the friendliest message available for err and
// exits.
func HandleFatalError(err error) {
	fmt.Fprintln(os.Stderr, errors.GetPrintableMessage(err))
	os.Exit(1)
}

// HandlePanic prints a bug-report request rather than a bare stack trace
// when the CLI panics. Meant to be deferred from main.
func HandlePanic() {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr,
			"dsclient crashed. This is a bug, please report it.\n\n%v\n\n%s",
			r, debug.Stack())
		os.Exit(1)
	}
}
