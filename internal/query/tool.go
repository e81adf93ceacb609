package query

import (
	"path/filepath"
	"strings"
)

// Tool defines the command that prints a dependency tree for a store path.
type Tool interface {
	// Command returns the executable and its arguments for storePath.
	Command(storePath string) (name string, args []string)
	Name() string
}

// NixStore implements Tool with `nix-store --query --tree`.
type NixStore struct {
	// Binary is the nix-store executable, "nix-store" when empty.
	Binary string
}

func (n *NixStore) binary() string {
	if n.Binary == "" {
		return "nix-store"
	}
	return n.Binary
}

func (n *NixStore) Command(storePath string) (string, []string) {
	return n.binary(), []string{"--query", "--tree", storePath}
}

func (n *NixStore) Name() string {
	return filepath.Base(n.binary())
}

// DetectTool returns the Tool for the configured binary. The binary may be a
// bare name looked up on PATH or an absolute path, e.g. a nix-store from a
// specific Nix profile.
func DetectTool(binary string) Tool {
	return &NixStore{Binary: strings.TrimSpace(binary)}
}
