//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep mockgen, invoked via
// `go generate`, tracked in go.mod so a fresh checkout can regenerate mocks.
package boardroom

import (
	_ "go.uber.org/mock/mockgen"
)
