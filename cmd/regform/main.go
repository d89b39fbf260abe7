package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/regform/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "regform",
		Short: "A live registration form server",
		Long: `regform serves a registration form that validates as you type.

Every keystroke and focus change is sent to the server over a
WebSocket, validated there, and only the affected fields are
updated in the page. Without JavaScript the form still works as
a plain POST.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored error output")

	cmd.AddCommand(
		serveCmd(),
		checkCmd(),
		versionCmd(),
	)
	return cmd
}

// printError prints err in the long form. Errors without a code, such as
// flag parsing failures, are reported as CLI errors.
func printError(err error) {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		e = errors.Newf(errors.CategoryCLI, "%s", err)
	}
	fmt.Fprint(os.Stderr, e.Format())
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
