// Package output provides structured output handling for the webeval CLI.
//
// Every command works for both human users and automated agents: the Printer
// switches between lipgloss-styled human output and structured JSON based on
// the --json flag, and styling is disabled automatically when output is piped.
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, output.IsTTY(cmd.OutOrStdout()))
//	printer.Success(map[string]any{"message": "integration installed"})
//	printer.Error(err)
//
// Errors created through the constructors carry exit codes:
//
//	output.ExitSuccess     // 0: Success
//	output.ExitUserError   // 1: User error (bad args, missing API key)
//	output.ExitSystemError // 2: System error (backend unreachable, I/O error)
//	output.ExitConflict    // 3: Conflict (integration already installed)
//
// The code is used both for the JSON error payload and the process exit code.
package output
