package model

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// StoreDir is the store root every path printed by nix-store lives under.
const StoreDir = "/nix/store/"

// ErrIllFormedStorePath is returned by the StorePath accessors that need the
// "<hash>-<name>" shape when the final path component has no '-'.
var ErrIllFormedStorePath = errors.New("ill-formed store path")

// StorePath identifies one store entry, e.g.
// /nix/store/az4kl5slhbkmmy4vj98z3hzxxkan7zza-gnugrep-3.3.
// Equality and ordering are on the full path text.
type StorePath string

func (s StorePath) String() string {
	return string(s)
}

// Compare orders store paths bytewise on the full path.
func (s StorePath) Compare(o StorePath) int {
	return strings.Compare(string(s), string(o))
}

// baseName is the component after StoreDir, or the last path element for
// paths outside the store.
func (s StorePath) baseName() string {
	if rest, ok := strings.CutPrefix(string(s), StoreDir); ok && rest != "" {
		return rest
	}
	return path.Base(string(s))
}

func (s StorePath) split() (hash, name string, err error) {
	base := s.baseName()
	hash, name, ok := strings.Cut(base, "-")
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no '-' after the hash", ErrIllFormedStorePath, string(s))
	}
	return hash, name, nil
}

// HashAndName returns "<hash>-<name>", the path without the store root.
func (s StorePath) HashAndName() (string, error) {
	hash, name, err := s.split()
	if err != nil {
		return "", err
	}
	return hash + "-" + name, nil
}

// ShortHashAndName returns the first 7 hash characters, "..", then the name:
// "az4kl5s..gnugrep-3.3".
func (s StorePath) ShortHashAndName() (string, error) {
	hash, name, err := s.split()
	if err != nil {
		return "", err
	}
	if len(hash) > 7 {
		hash = hash[:7]
	}
	return hash + ".." + name, nil
}

// DrvName returns the part after the first '-' following the hash:
// "gnugrep-3.3".
func (s StorePath) DrvName() (string, error) {
	_, name, err := s.split()
	if err != nil {
		return "", err
	}
	return name, nil
}

// Recurse tags one occurrence of a store path in the tree.
type Recurse int

const (
	// Fresh marks an occurrence printed with its full subtree.
	Fresh Recurse = iota
	// Collapsed marks a back-reference: nix-store printed "[...]" because
	// the subtree already appeared earlier in the output.
	Collapsed
)

func (r Recurse) String() string {
	if r == Collapsed {
		return "collapsed"
	}
	return "fresh"
}

// MarshalText implements encoding.TextMarshaler.
func (r Recurse) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Recurse) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fresh":
		*r = Fresh
	case "collapsed":
		*r = Collapsed
	default:
		return fmt.Errorf("unknown recurse marker %q", text)
	}
	return nil
}

// Entry is the payload of one tree node. Many entries in one tree may share
// a StorePath; each occurrence carries its own Recurse tag.
type Entry struct {
	Path    StorePath `json:"path"`
	Recurse Recurse   `json:"recurse"`
}

// NewEntry builds a Fresh entry for p.
func NewEntry(p StorePath) Entry {
	return Entry{Path: p, Recurse: Fresh}
}

// IsCollapsed reports whether e is a back-reference.
func (e Entry) IsCollapsed() bool {
	return e.Recurse == Collapsed
}

// Label is the short form shown in the tree view. It falls back to the full
// path for ill-formed store paths and says so in the second return value.
func (e Entry) Label() (string, bool) {
	short, err := e.Path.ShortHashAndName()
	if err != nil {
		return e.Path.String(), false
	}
	return short, true
}
