// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user a yes/no question. An error means the answer
// could not be obtained; callers treat that as a decline.
type Prompter interface {
	Confirm(message string) (bool, error)
}

// TerminalPrompter reads confirmations from an interactive terminal.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompter prompts on stdin/stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// Confirm asks message with a [y/N] suffix. Anything but y/yes declines.
func (p *TerminalPrompter) Confirm(message string) (bool, error) {
	if !term.IsTerminal(int(p.In.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal")
	}

	fmt.Fprintf(p.Out, "%s [y/N] ", message)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
