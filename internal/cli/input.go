package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/secureshell/passman/internal/util"
)

// Environment variables that replace the master password prompts
const (
	envMaster    = "PASSMAN_MASTER"
	envNewMaster = "PASSMAN_NEW_MASTER"
)

// Prompter reads answers from the user
type Prompter interface {
	// Password reads a secret without echo
	Password(prompt string) (string, error)
	// Input reads one line of text
	Input(prompt string) (string, error)
	// Confirm asks a yes/no question
	Confirm(prompt string, defaultYes bool) (bool, error)
}

type terminalPrompter struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer
}

func newTerminalPrompter(in *os.File, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: in, reader: bufio.NewReader(in), out: out}
}

// Password prompts for a password without echoing to terminal.
// Piped input is read line by line.
func (p *terminalPrompter) Password(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.readLine()
	}

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// Input prompts for regular input
func (p *terminalPrompter) Input(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	return p.readLine()
}

// Confirm prompts for yes/no confirmation
func (p *terminalPrompter) Confirm(prompt string, defaultYes bool) (bool, error) {
	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}

	input, err := p.Input(prompt + suffix)
	if err != nil {
		return false, err
	}
	return parseConfirm(input, defaultYes), nil
}

func (p *terminalPrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseConfirm(input string, defaultYes bool) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

// masterPassword returns $PASSMAN_MASTER or prompts for it
func (a *app) masterPassword(prompt string) (string, error) {
	if pw := os.Getenv(envMaster); pw != "" {
		return pw, nil
	}
	return a.prompter.Password(prompt)
}

// newPassword prompts twice for a password that must match.
// A non-empty value of env is used instead when set.
func (a *app) newPassword(prompt, env string) (string, error) {
	if env != "" {
		if pw := os.Getenv(env); pw != "" {
			return pw, nil
		}
	}

	pw, err := a.prompter.Password(prompt)
	if err != nil {
		return "", err
	}
	confirm, err := a.prompter.Password("Confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", util.InvalidInput("passwords do not match")
	}
	return pw, nil
}

// confirm asks before a destructive action unless the config or --yes skips it
func (a *app) confirm(prompt string, skip bool) (bool, error) {
	if skip || !a.cfg.Security.ConfirmDestructive {
		return true, nil
	}
	return a.prompter.Confirm(prompt, false)
}
