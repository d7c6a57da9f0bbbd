// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package command

import (
	"github.com/samber/oops"
)

// CodeNotFound marks the terminal failure after every suggestion was
// declined or none existed.
const CodeNotFound = "COMMAND_NOT_FOUND"

// ErrNotFound creates the terminal command-not-found error.
func ErrNotFound(id string) error {
	return oops.Code(CodeNotFound).
		With("command", id).
		Errorf("command %s not found", id)
}
