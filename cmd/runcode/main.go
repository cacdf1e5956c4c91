// Command runcode runs one piece of code through the same registry and executor as the
// HTTP service, without starting a server.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sakif/code-runner/internal/apperror"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorText(err))
		os.Exit(1)
	}
}

// errorText prefers the client-facing message of an AppError, which for compile and run
// failures is the tool's own stderr.
func errorText(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return strings.TrimRight(appErr.Message, "\n")
	}
	return "Error: " + err.Error()
}
