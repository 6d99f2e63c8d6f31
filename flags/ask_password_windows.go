//go:build windows
// +build windows

package flags

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// TerminalPrompter reads a password from the console without echo.
type TerminalPrompter struct{}

func (TerminalPrompter) PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	password, err := terminal.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}
	fmt.Fprintln(os.Stderr)
	return string(password), nil
}
