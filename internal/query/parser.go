package query

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"nqtv/internal/model"
	"nqtv/internal/tree"
)

// Tokens of the `nix-store --query --tree` format:
//
//	/nix/store/...-hello-2.10
//	+---/nix/store/...-glibc-2.27
//	|   +---/nix/store/...-glibc-2.27 [...]
//	+---/nix/store/...-hello-2.10 [...]
const (
	branchMarker   = "+---"
	collapseMarker = "[...]"
	unitWidth      = 4
)

// nestingUnits are the two interchangeable spellings of one indent level.
// Only the number of units matters, never which spelling was used.
var nestingUnits = [...]string{"|   ", "    "}

// Parse errors. A *ParseError wraps exactly one of these as its Kind.
var (
	// ErrMalformedEntryLine means a line is not a store path optionally
	// followed by the collapse marker.
	ErrMalformedEntryLine = errors.New("malformed entry line")

	// ErrMalformedIndent means an indent prefix is not a whole number of
	// nesting units, or nests deeper than its parent allows.
	ErrMalformedIndent = errors.New("malformed indent")

	// ErrTrailingInput means a complete tree was parsed but input remained.
	ErrTrailingInput = errors.New("trailing input")
)

// ParseError reports where and why tree text was rejected.
type ParseError struct {
	Kind     error  // ErrMalformedEntryLine, ErrMalformedIndent or ErrTrailingInput
	Line     int    // 1-based line of the offending text
	Fragment string // the offending line, truncated
	Reason   string

	rest string // unparsed input at the failure point
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %s: %q", e.Line, e.Kind, e.Reason, e.Fragment)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func fail(kind error, rest, reason string) *ParseError {
	return &ParseError{Kind: kind, Reason: reason, rest: rest}
}

const maxFragment = 120

// locate fills Line and Fragment from the position of e.rest inside src.
func (e *ParseError) locate(src string) *ParseError {
	offset := len(src) - len(e.rest)
	if offset < 0 || offset > len(src) {
		offset = len(src)
	}
	e.Line = strings.Count(src[:offset], "\n") + 1
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	line := src[start:]
	if end := strings.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}
	if len(line) > maxFragment {
		cut := maxFragment
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		line = line[:cut] + "..."
	}
	e.Fragment = line
	return e
}

// ParseTree parses the complete output of `nix-store --query --tree`.
// The first line is the root, which is always Fresh. Every byte of input must
// be consumed; there is no partial result on failure.
func ParseTree(text string) (tree.Tree[model.Entry], error) {
	t, err := parseTree(text)
	if err != nil {
		return tree.Tree[model.Entry]{}, err.locate(text)
	}
	return t, nil
}

func parseTree(input string) (tree.Tree[model.Entry], *ParseError) {
	root, rest, ok := parseStorePath(input)
	if !ok {
		return tree.Tree[model.Entry]{}, fail(ErrMalformedEntryLine, input, "missing root store path")
	}
	rest, err := expectNewline(rest)
	if err != nil {
		return tree.Tree[model.Entry]{}, err
	}
	children, rest, err := parseBranches(rest, 0)
	if err != nil {
		return tree.Tree[model.Entry]{}, err
	}
	if rest != "" {
		return tree.Tree[model.Entry]{}, classifyLeftover(rest)
	}
	return tree.New(model.NewEntry(root), children), nil
}

// parseBranches consumes sibling branches at nesting level `level` together
// with their subtrees. It stops, without error, at the first line that is not
// `level` nesting units followed by the branch marker: that line belongs to
// an ancestor, or the input is exhausted.
func parseBranches(input string, level int) ([]tree.Tree[model.Entry], string, *ParseError) {
	var branches []tree.Tree[model.Entry]
	for {
		rest, ok := matchBranchStart(input, level)
		if !ok {
			return branches, input, nil
		}
		entry, rest, err := parseEntry(rest)
		if err != nil {
			return nil, "", err
		}
		rest, err = expectNewline(rest)
		if err != nil {
			return nil, "", err
		}
		children, rest, err := parseBranches(rest, level+1)
		if err != nil {
			return nil, "", err
		}
		branches = append(branches, tree.New(entry, children))
		input = rest
	}
}

// matchBranchStart consumes exactly `level` nesting units and the branch
// marker.
func matchBranchStart(input string, level int) (string, bool) {
	for i := 0; i < level; i++ {
		rest, ok := consumeUnit(input)
		if !ok {
			return input, false
		}
		input = rest
	}
	return strings.CutPrefix(input, branchMarker)
}

func consumeUnit(input string) (string, bool) {
	for _, unit := range nestingUnits {
		if rest, ok := strings.CutPrefix(input, unit); ok {
			return rest, true
		}
	}
	return input, false
}

// parseStorePath takes the run of non-whitespace characters at the start of
// input. ok is false when the run is empty.
func parseStorePath(input string) (model.StorePath, string, bool) {
	end := strings.IndexFunc(input, unicode.IsSpace)
	if end < 0 {
		end = len(input)
	}
	if end == 0 {
		return "", input, false
	}
	return model.StorePath(input[:end]), input[end:], true
}

// parseEntry reads a store path and an optional " [...]" suffix. It leaves
// the line terminator in place.
func parseEntry(input string) (model.Entry, string, *ParseError) {
	p, rest, ok := parseStorePath(input)
	if !ok {
		return model.Entry{}, input, fail(ErrMalformedEntryLine, input, "missing store path")
	}
	afterSpace := strings.TrimLeft(rest, " \t")
	if len(afterSpace) == len(rest) {
		return model.Entry{Path: p, Recurse: model.Fresh}, rest, nil
	}
	if after, ok := strings.CutPrefix(afterSpace, collapseMarker); ok {
		return model.Entry{Path: p, Recurse: model.Collapsed}, after, nil
	}
	return model.Entry{}, rest, fail(ErrMalformedEntryLine, rest, "unexpected text after store path")
}

func expectNewline(input string) (string, *ParseError) {
	if rest, ok := strings.CutPrefix(input, "\n"); ok {
		return rest, nil
	}
	if input == "" {
		return input, fail(ErrMalformedEntryLine, input, "entry is not newline-terminated")
	}
	return input, fail(ErrMalformedEntryLine, input, "unexpected text after entry")
}

// classifyLeftover explains why the line at the start of rest could not be
// attached to the tree.
func classifyLeftover(rest string) *ParseError {
	line := rest
	if end := strings.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}

	units := 0
	after := line
	for {
		next, ok := consumeUnit(after)
		if !ok {
			break
		}
		after = next
		units++
	}

	switch {
	case strings.HasPrefix(after, branchMarker):
		return fail(ErrMalformedIndent, rest,
			fmt.Sprintf("branch nested %d levels deep without a parent at depth %d", units, units-1))
	case after != "" && (after[0] == ' ' || after[0] == '|'):
		width := len(line) - len(strings.TrimLeft(line, " |"))
		return fail(ErrMalformedIndent, rest,
			fmt.Sprintf("indent of %d columns is not a multiple of %d", width, unitWidth))
	case units > 0:
		return fail(ErrMalformedEntryLine, rest, "indented line without branch marker "+branchMarker)
	default:
		return fail(ErrTrailingInput, rest, "input continues after the tree")
	}
}

// ParseEntry parses a single entry: a store path optionally followed by
// whitespace and "[...]". A trailing newline is allowed; anything else after
// the entry is an error.
func ParseEntry(line string) (model.Entry, error) {
	entry, rest, err := parseEntry(line)
	if err == nil && rest != "" && rest != "\n" {
		err = fail(ErrMalformedEntryLine, rest, "unexpected text after entry")
	}
	if err != nil {
		return model.Entry{}, err.locate(line)
	}
	return entry, nil
}
