package query

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Execution errors. An *ExecError wraps exactly one of these as its Kind.
var (
	// ErrCommand means the tool could not be started.
	ErrCommand = errors.New("could not run command")

	// ErrNixStore means the tool ran but exited unsuccessfully.
	ErrNixStore = errors.New("nix-store failed")

	// ErrNotUTF8 means the tool's output is not valid UTF-8.
	ErrNotUTF8 = errors.New("output is not valid UTF-8")
)

// ExecError describes a failed tool invocation.
type ExecError struct {
	Kind      error
	Tool      string
	StorePath string
	Stderr    string // tool's stderr, trimmed
	Err       error  // underlying error, if any
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Tool, e.StorePath, e.Kind)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExecError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Run executes tool for storePath and returns its stdout. The process is
// killed if ctx is cancelled before it exits.
func Run(ctx context.Context, tool Tool, storePath string) (string, error) {
	name, args := tool.Command(storePath)
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExecError{
				Kind:      ErrNixStore,
				Tool:      tool.Name(),
				StorePath: storePath,
				Stderr:    strings.TrimSpace(stderr.String()),
				Err:       err,
			}
		}
		return "", &ExecError{Kind: ErrCommand, Tool: tool.Name(), StorePath: storePath, Err: err}
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", &ExecError{Kind: ErrNotUTF8, Tool: tool.Name(), StorePath: storePath}
	}
	return stdout.String(), nil
}

// Query runs tool for storePath and builds a Result from its output.
// A parse failure is returned together with the raw output so callers can
// still show it.
func Query(ctx context.Context, tool Tool, storePath string) (*Result, string, error) {
	log.Printf("query: %s --query --tree %s", tool.Name(), storePath)
	raw, err := Run(ctx, tool, storePath)
	if err != nil {
		log.Printf("query: %v", err)
		return nil, "", err
	}
	res, err := Build(raw)
	if err != nil {
		log.Printf("query: parse %d bytes: %v", len(raw), err)
		return nil, raw, fmt.Errorf("parse %s output: %w", tool.Name(), err)
	}
	log.Printf("query: %d bytes, %d entries, %d distinct", len(raw), res.Size(), res.Index.Len())
	return res, raw, nil
}

// Load builds a Result from tree text captured earlier, e.g. a file or stdin.
func Load(r io.Reader) (*Result, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read tree text: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, "", fmt.Errorf("read tree text: %w", ErrNotUTF8)
	}
	raw := string(data)
	res, err := Build(raw)
	if err != nil {
		return nil, raw, fmt.Errorf("parse tree text: %w", err)
	}
	return res, raw, nil
}
