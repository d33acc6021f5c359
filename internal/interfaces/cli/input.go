package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// prompt prints label to w and reads one line from r.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label+": "); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password reads a password without echo when stdin is a terminal, and as
// a plain line otherwise (e.g. piped from a secret manager).
func password(stdin io.Reader, r *bufio.Reader, w io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, "Password: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}
	return prompt(r, w, "Password")
}

// readPayload returns the record body given with -data or -file ("-" reads
// stdin). The body must be a JSON object and is forwarded as is.
func readPayload(data, file string, stdin io.Reader) (json.RawMessage, error) {
	var body []byte
	switch {
	case data != "" && file != "":
		return nil, usageErrorf("use either -data or -file, not both")
	case data != "":
		body = []byte(data)
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		body = b
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		body = b
	default:
		return nil, usageErrorf("a record body is required (-data JSON or -file PATH)")
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' || !json.Valid(body) {
		return nil, usageErrorf("record body must be a JSON object")
	}
	return json.RawMessage(body), nil
}
