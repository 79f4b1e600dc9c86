// Package editor opens generated text in the user's editor.
package editor

import (
	"context"
	"os"
	"os/exec"
	"regexp"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/logger"
)

// DefaultCommand is used when neither $VISUAL nor $EDITOR is set
const DefaultCommand = "vi"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Editor runs an editor command on a temporary copy of the text
type Editor struct {
	argv []string
	// Dir holds the temporary files, os.TempDir() when empty
	Dir string
	// Keep leaves the temporary file in place after the editor exits
	Keep bool
}

// New parses command with shell quoting rules, e.g. `code --wait`
func New(command string) (*Editor, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid editor command %q", command), errors.ErrInvalidRequest)
	}
	if len(argv) == 0 {
		return nil, errors.NewInvalidRequestError("editor command is empty")
	}
	return &Editor{argv: argv}, nil
}

// FromEnv builds the editor from $VISUAL or $EDITOR
func FromEnv() (*Editor, error) {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if cmd := os.Getenv(key); cmd != "" {
			return New(cmd)
		}
	}
	return New(DefaultCommand)
}

// Command returns the parsed editor argv
func (e *Editor) Command() []string {
	return append([]string(nil), e.argv...)
}

// View writes text to a temporary file named after title and runs the
// editor on it, attached to the terminal, until it exits.
func (e *Editor) View(ctx context.Context, title, text string) error {
	f, err := os.CreateTemp(e.Dir, unsafeFileChars.ReplaceAllString(title, "_")+"-*.wiki")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	path := f.Name()
	if !e.Keep {
		defer os.Remove(path)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}

	args := append(e.Command()[1:], path)
	cmd := exec.CommandContext(ctx, e.argv[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.Debugw("Opening editor", logger.FieldPageTitle, title, logger.FieldFile, path)
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "editor %s failed", e.argv[0])
	}
	return nil
}
