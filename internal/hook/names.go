// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package hook

// Fixed hook vocabulary. Plugins may register ad hoc names, but built-in
// commands only fire these.
const (
	CommandNotFound    = "command_not_found"
	ValidateBefore     = "validate:before"
	ValidateAfter      = "validate:after"
	ParseBefore        = "parse:before"
	ParseAfter         = "parse:after"
	GeneratePrepare    = "generate:prepare"
	GenerateFileBefore = "generate:file:before"
	GenerateFileAfter  = "generate:file:after"
	GenerateComplete   = "generate:complete"
	Init               = "init"
	CommandBefore      = "command:before"
	CommandAfter       = "command:after"
	Error              = "error"
)
