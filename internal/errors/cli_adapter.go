package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the command line front-end.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if be, ok := err.(*BuildError); ok {
		return a.exitCodeFromBuildError(be)
	}

	return 1
}

// exitCodeFromBuildError maps BuildError categories to exit codes.
func (a *CLIErrorAdapter) exitCodeFromBuildError(err *BuildError) int {
	switch err.Category {
	case CategoryConfig:
		return 2 // Invalid configuration
	case CategoryCollision:
		return 3 // Permalink collision
	case CategoryParse, CategoryRender:
		return 4 // Document-level failures surfaced as overall failure
	case CategoryFileSystem:
		return 11 // Output write error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	be, ok := err.(*BuildError)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	if a.verbose {
		return be.Error()
	}

	switch be.Category {
	case CategoryConfig, CategoryCollision:
		return be.Message
	default:
		return fmt.Sprintf("%s: %s", be.Category, be.Message)
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged in addition to printed.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if be, ok := err.(*BuildError); ok {
		return be.Category == CategoryInternal || be.Category == CategoryFileSystem
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	be, ok := err.(*BuildError)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	level := slog.LevelError
	switch be.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError, SeverityFatal:
		level = slog.LevelError
	}

	attrs := []slog.Attr{slog.String("category", string(be.Category))}
	for k, v := range be.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	a.logger.LogAttrs(nil, level, be.Message, attrs...)
}
