package errors

import "fmt"

// NewConfigError creates a fatal configuration error. Config errors abort the
// build before any rendering happens.
func NewConfigError(message string) *BuildError {
	return New(CategoryConfig, SeverityFatal, message)
}

// WrapConfigError wraps an underlying error as a fatal configuration error.
func WrapConfigError(err error, message string) *BuildError {
	return Wrap(err, CategoryConfig, SeverityFatal, message)
}

// NewParseError creates a per-document front-matter parse error. The document
// is skipped and reported; the build continues.
func NewParseError(path string, cause error) *BuildError {
	return Wrap(cause, CategoryParse, SeverityError, fmt.Sprintf("malformed front-matter in %s", path)).
		WithContext("path", path)
}

// NewCollisionError creates a fatal permalink collision error naming both
// source documents that resolved to the same output path.
func NewCollisionError(url, firstPath, secondPath string) *BuildError {
	return New(CategoryCollision, SeverityFatal,
		fmt.Sprintf("permalink %q resolved by both %s and %s", url, firstPath, secondPath)).
		WithContext("url", url).
		WithContext("first", firstPath).
		WithContext("second", secondPath)
}

// NewRenderError creates a per-document render error. That document's output
// is omitted and reported; the build continues.
func NewRenderError(path string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityError, fmt.Sprintf("render %s", path)).
		WithContext("path", path)
}

// WrapFileSystem wraps a filesystem failure (fatal: the output tree cannot be
// trusted after a failed write).
func WrapFileSystem(err error, message string) *BuildError {
	return Wrap(err, CategoryFileSystem, SeverityFatal, message)
}

// WrapInternal wraps an unexpected internal failure.
func WrapInternal(err error, message string) *BuildError {
	return Wrap(err, CategoryInternal, SeverityFatal, message)
}
