package client

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordReader reads secrets without echoing them when In is a
// terminal, and plain lines otherwise.
type PasswordReader struct {
	In  *os.File
	Out io.Writer
}

// ReadPassword prints prompt and reads one secret.
func (p PasswordReader) ReadPassword(prompt string) (string, error) {
	fmt.Fprint(p.Out, prompt)
	fd := int(p.In.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(p.Out)
		return string(pw), err
	}
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword prompts on stderr and reads a secret from stdin.
func ReadPassword(prompt string) (string, error) {
	return PasswordReader{In: os.Stdin, Out: os.Stderr}.ReadPassword(prompt)
}
