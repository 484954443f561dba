// Command remindctl is the operator CLI for the reminder pipeline: it runs
// migrations, plans and cancels reminders, and inspects notification history.
package main

import (
	"fmt"
	"os"

	"github.com/phrazzld/taskpulse-api/internal/redact"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, redact.Error(err))
		os.Exit(1)
	}
}
