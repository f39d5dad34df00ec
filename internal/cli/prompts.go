package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/mrz1836/deaddrop/internal/keycrypto"
	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// minPassphraseLength is the shortest passphrase accepted for sealing a keystore.
const minPassphraseLength = 8

// Prompt functions are variables so tests can replace them.
//
//nolint:gochecknoglobals // Test seams for interactive input
var (
	promptPasswordFn    = promptPassword
	promptNewPasswordFn = promptNewPassword
	promptConfirmFn     = promptConfirmation
	promptLineFn        = promptLine
	isInteractiveFn     = stdinIsTerminal
)

//nolint:gochecknoglobals // Single buffered reader so consecutive prompts do not drop input
var (
	stdinOnce   sync.Once
	stdinReader *bufio.Reader
)

func stdin() *bufio.Reader {
	stdinOnce.Do(func() { stdinReader = bufio.NewReader(os.Stdin) })
	return stdinReader
}

// out is a helper for CLI output that ignores write errors.
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func out(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func outln(w io.Writer, args ...interface{}) {
	fmt.Fprintln(w, args...)
}

// stdinIsTerminal reports whether the user can answer prompts.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

// promptPassword prompts for a password with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassword prompts for a keystore passphrase with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassword() ([]byte, error) {
	password, err := promptPasswordFn("Enter keystore passphrase: ")
	if err != nil {
		return nil, err
	}

	if len(password) < minPassphraseLength {
		keycrypto.Zero(password)
		return nil, droperr.WithSuggestion(
			droperr.ErrInvalidInput,
			fmt.Sprintf("passphrase must be at least %d characters", minPassphraseLength),
		)
	}

	confirm, err := promptPasswordFn("Confirm passphrase: ")
	if err != nil {
		keycrypto.Zero(password)
		return nil, err
	}
	defer keycrypto.Zero(confirm)

	if string(password) != string(confirm) {
		keycrypto.Zero(password)
		return nil, droperr.WithSuggestion(
			droperr.ErrInvalidInput,
			"passphrases do not match",
		)
	}

	return password, nil
}

// promptConfirmation asks a yes/no question. Anything but y or yes is no.
func promptConfirmation(question string) bool {
	out(os.Stderr, "\n%s [y/N]: ", question)

	response, err := stdin().ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// promptLine reads one line of visible input.
func promptLine(label string) (string, error) {
	out(os.Stderr, "%s", label)

	line, err := stdin().ReadString('\n')
	if err != nil && line == "" {
		return "", droperr.WithSuggestion(droperr.ErrInvalidInput, "no input provided")
	}
	return strings.TrimSpace(line), nil
}

// passphrasePrompt adapts promptPasswordFn to the keystore unlock callback.
func passphrasePrompt(name string) (string, error) {
	pw, err := promptPasswordFn(fmt.Sprintf("Passphrase for keystore %q: ", name))
	if err != nil {
		return "", err
	}
	defer keycrypto.Zero(pw)
	return string(pw), nil
}
