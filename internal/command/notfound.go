// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/asyncapi/cli/internal/config"
	"github.com/asyncapi/cli/internal/hook"
	"github.com/asyncapi/cli/internal/suggest"
	"github.com/asyncapi/cli/pkg/errutil"
)

// ExitStatusNotFound is the process status after every suggestion is
// exhausted or declined.
const ExitStatusNotFound = 127

// helpLike matches identifiers that contain a help segment, such as
// `help:config` or `config:help`.
var helpLike = regexp.MustCompile(`(^|:)help(:|$)`)

// NotFoundHandler runs the interactive workflow when the CLI cannot
// resolve a typed command: propose corrections, let hooks observe the
// resolution, and dispatch the confirmed command.
type NotFoundHandler struct {
	index    *Index
	hooks    *hook.Manager
	prompter Prompter
	history  *config.History
	config   *config.Document
	out      io.Writer
	exit     func(int)
	logger   *slog.Logger
}

// NotFoundOption configures the handler.
type NotFoundOption func(*NotFoundHandler)

// WithPrompter replaces the interactive prompter.
func WithPrompter(p Prompter) NotFoundOption {
	return func(h *NotFoundHandler) {
		h.prompter = p
	}
}

// WithHistory attaches the bounded command-history log. Appends are
// best-effort.
func WithHistory(hist *config.History) NotFoundOption {
	return func(h *NotFoundHandler) {
		h.history = hist
	}
}

// WithConfig exposes the configuration document to hooks through the
// shared context.
func WithConfig(doc *config.Document) NotFoundOption {
	return func(h *NotFoundHandler) {
		h.config = doc
	}
}

// WithOutput redirects user-facing messages.
func WithOutput(w io.Writer) NotFoundOption {
	return func(h *NotFoundHandler) {
		h.out = w
	}
}

// WithExit replaces the process-terminating exit function.
func WithExit(exit func(int)) NotFoundOption {
	return func(h *NotFoundHandler) {
		h.exit = exit
	}
}

// NewNotFoundHandler creates the workflow around a command index and the
// shared hook manager.
func NewNotFoundHandler(index *Index, hooks *hook.Manager, opts ...NotFoundOption) *NotFoundHandler {
	h := &NotFoundHandler{
		index:    index,
		hooks:    hooks,
		prompter: NewTerminalPrompter(),
		out:      os.Stderr,
		exit:     os.Exit,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle resolves the typed identifier. It returns nil when the workflow
// ends in a resolved run, a help delegation, or a silent empty-index
// return; the terminal failure path calls the exit function with status
// 127 and returns the not-found error.
func (h *NotFoundHandler) Handle(ctx context.Context, id string, argv []string) error {
	ctx, span := otel.Tracer("command").Start(ctx, "command.not_found")
	defer span.End()
	span.SetAttributes(attribute.String("command.id", id))

	shared := h.hooks.SharedContext()
	shared.Set("command", id)
	shared.Set("argv", argv)
	if h.config != nil {
		shared.Set("config", h.config)
	}
	h.hooks.ExecuteWithContext(ctx, hook.CommandBefore)

	if id == "--help" || id == "-h" {
		RecordResolution(OutcomeHelped)
		return h.index.RunCommand(ctx, "help", nil)
	}

	ids := h.index.VisibleIDs()
	if len(ids) == 0 {
		RecordResolution(OutcomeEmpty)
		return nil
	}

	primary, alternatives, related := h.computeSuggestions(id, ids)
	if h.history != nil {
		h.history.Append(id)
		if err := h.history.Save(); err != nil {
			h.logger.Debug("failed to persist command history", "error", err)
		}
	}

	fmt.Fprintf(h.out, "%s is not an asyncapi command.\n", id)
	if len(related) > 0 {
		fmt.Fprintf(h.out, "Related commands: %s\n", strings.Join(related, ", "))
	}

	if primary != "" {
		if h.confirm(primary) {
			RecordResolution(OutcomePrimary)
			return h.run(ctx, primary, argv)
		}
		if len(alternatives) > 0 && h.confirm(alternatives[0]) {
			RecordResolution(OutcomeAlternative)
			return h.run(ctx, alternatives[0], argv)
		}
	}

	return h.fail(ctx, id)
}

// computeSuggestions picks the primary correction, up to 3 alternatives
// excluding it, and up to 2 related commands. A help-like identifier gets
// a synthesized help suggestion instead of an edit-distance match.
func (h *NotFoundHandler) computeSuggestions(id string, ids []string) (string, []string, []string) {
	var primary string
	if helpLike.MatchString(id) {
		primary = synthesizeHelp(id)
	} else if closest, ok := suggest.Closest(id, ids); ok {
		primary = closest
	}

	ordered := suggest.Ordered(id, ids, suggest.DefaultOrderedLimit+1)
	alternatives := make([]string, 0, suggest.DefaultOrderedLimit)
	for _, candidate := range ordered {
		if candidate == primary {
			continue
		}
		alternatives = append(alternatives, candidate)
		if len(alternatives) == suggest.DefaultOrderedLimit {
			break
		}
	}

	related := suggest.Related(id, ids, suggest.DefaultRelatedLimit)
	return primary, alternatives, related
}

// synthesizeHelp normalizes a help-like identifier into a help command:
// `config:help` becomes `help:config`.
func synthesizeHelp(id string) string {
	segments := strings.Split(id, Separator)
	rest := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "help" && s != "" {
			rest = append(rest, s)
		}
	}
	return strings.Join(append([]string{"help"}, rest...), Separator)
}

func (h *NotFoundHandler) confirm(suggestion string) bool {
	ok, err := h.prompter.Confirm(fmt.Sprintf("Did you mean %s?", suggestion))
	if err != nil {
		h.logger.Debug("confirmation prompt failed, treating as decline", "error", err)
		return false
	}
	return ok
}

// run dispatches the confirmed suggestion. A help-shaped suggestion is
// split: the command becomes `help` and the remaining segments its
// argument; anything else runs with the original argument vector.
func (h *NotFoundHandler) run(ctx context.Context, suggestion string, argv []string) error {
	cmd := suggestion
	args := argv
	if segments := strings.Split(suggestion, Separator); segments[0] == "help" {
		cmd = "help"
		args = segments[1:]
	}

	shared := h.hooks.SharedContext()
	shared.Set("resolved", cmd)
	shared.Set("resolved_argv", args)
	h.hooks.ExecuteWithContext(ctx, hook.CommandAfter)

	h.logger.Info("running corrected command", "command", cmd, "argv", args)
	return h.index.RunCommand(ctx, cmd, args)
}

// fail is the terminal state: store the error in the shared context,
// fire the error hook best-effort, print guidance, and exit 127.
func (h *NotFoundHandler) fail(ctx context.Context, id string) error {
	err := ErrNotFound(id)
	h.hooks.SharedContext().Set("error", err.Error())
	h.hooks.Execute(ctx, hook.Error, id)

	topic := strings.Split(id, Separator)[0]
	if h.index.HasTopic(topic) {
		fmt.Fprintf(h.out, "Run 'asyncapi help %s' for a list of available commands.\n", topic)
	} else {
		fmt.Fprintln(h.out, "Run 'asyncapi help' for a list of available commands.")
	}

	errutil.LogError(h.logger, "command not found", err)
	RecordResolution(OutcomeFailed)
	h.exit(ExitStatusNotFound)
	return err
}
