package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/fahmaliyi/otpvault/totp"
	"github.com/fahmaliyi/otpvault/vault"
)

// Clipboard receives generated codes.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// linePrompter reads passwords without echo when in is a terminal and falls
// back to plain lines otherwise.
type linePrompter struct {
	in  *bufio.Reader
	fd  int
	tty bool
	out io.Writer
}

func newLinePrompter(in *bufio.Reader, f io.Reader, out io.Writer) *linePrompter {
	p := &linePrompter{in: in, out: out}
	if file, ok := f.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		p.fd = int(file.Fd())
		p.tty = true
	}
	return p
}

func (p *linePrompter) ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprint(p.out, prompt)
	if p.tty {
		pw, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		return pw, err
	}
	line, err := readLine(p.in)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (p *linePrompter) Notify(msg string) { fmt.Fprintln(p.out, msg) }

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func confirm(r *bufio.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s [N/y]? ", question)
	answer, err := readLine(r)
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(answer)) == "y", nil
}

// promptSelect asks for a 1-based account number until a valid one is given.
func promptSelect(r *bufio.Reader, w io.Writer, n int) (int, error) {
	for {
		fmt.Fprint(w, "select: ")
		line, err := readLine(r)
		if err != nil {
			return 0, fmt.Errorf("failed to read input: %w", err)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(w, "Invalid number: %s\n", strings.TrimSpace(line))
			continue
		}
		if idx > 0 && idx <= n {
			return idx, nil
		}
		fmt.Fprintf(w, "Number should be in 1..%d\n", n)
	}
}

func printAccounts(w io.Writer, names []string) {
	for i, name := range names {
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
	}
}

// Describe turns core errors into the short messages shown to users.
func Describe(err error) string {
	var kerr *totp.KeyDecodeError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, vault.ErrWrongPassword):
		return "Wrong password!"
	case errors.Is(err, vault.ErrInvalidDataFile):
		return "Invalid data file"
	case errors.Is(err, vault.ErrHomeDirNotFound):
		return "Home directory not found"
	case errors.As(err, &kerr):
		return fmt.Sprintf("Invalid key %q: %v", kerr.Key, kerr.Err)
	default:
		return err.Error()
	}
}
